package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/sigact/internal/migrate"
)

func init() {
	migrate.Config.Register(migrate.Migration{
		Version:     2,
		Description: "move flat on_<signal> keys into the [actions] table",
		Upgrade:     upgradeActionsTable,
	})
}

// upgradeActionsTable rewrites the v1 layout, where each binding was a flat
// top-level key like `on_sigterm = "stop"`, into the v2 [actions] table
// keyed by canonical signal names.
func upgradeActionsTable(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse v1 config: %w", err)
	}

	actions, _ := doc["actions"].(map[string]any)
	if actions == nil {
		actions = map[string]any{}
	}
	for k, v := range doc {
		if !strings.HasPrefix(k, "on_") {
			continue
		}
		action, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("v1 key %q: expected string action, got %T", k, v)
		}
		sig := strings.ToUpper(strings.TrimPrefix(k, "on_"))
		if !strings.HasPrefix(sig, "SIG") {
			sig = "SIG" + sig
		}
		actions[sig] = action
		delete(doc, k)
	}
	if len(actions) > 0 {
		doc["actions"] = actions
	}
	doc["version"] = 2

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode v2 config: %w", err)
	}
	return buf.Bytes(), nil
}
