// Package engine loads the YAML configuration and turns each configured
// profile into a ready-to-use OpenRouter completer.
//
// A profile is one named variant of generation settings (model, logical type,
// tuning knobs, headers, timeout). The engine validates the whole
// configuration up front, builds one [openrouter.Adapter] per profile and
// wraps it with recovery, logging and timeout middleware. Logging always goes
// through a handler that scrubs the configured API keys.
//
// Usage:
//
//	cfg, err := engine.LoadConfig("openrouter.yaml")
//	if err != nil { ... }
//	eng, err := engine.New(cfg)
//	if err != nil { ... }
//	c, _ := eng.Completer("")
//	text, err := c.Complete(ctx, "Say hi", nil)
package engine
