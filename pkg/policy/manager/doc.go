// Package manager keeps a running process in step with its configuration
// file.
//
// ConfigManager loads the YAML configuration, applies the builtins section
// to a Reloader (the engine dispatcher) and watches the file with fsnotify.
// Changes are debounced so an editor's save burst produces one reload. A file
// that fails to parse, validate or apply is logged and the previous
// configuration stays in effect.
//
//	mgr, err := manager.NewConfigManager(path, dispatcher,
//		manager.WithLogger(logger),
//		manager.WithDebounce(cfg.Serve.WatchDebounce),
//	)
//	if _, err := mgr.Load(); err != nil {
//		return err
//	}
//	go mgr.Watch(ctx)
package manager
