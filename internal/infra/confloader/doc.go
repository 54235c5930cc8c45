// Package confloader loads layered configuration and watches files for changes.
//
// Sources are merged with koanf in increasing priority: defaults, a YAML file,
// SESSIONKIT_* environment variables, then explicit overrides such as CLI flags.
// Environment names map to keys by splitting the section from the rest of the
// name once, so SESSIONKIT_SERVER_BASE_URL becomes server.base_url.
//
// Watcher wraps fsnotify and is shared by the config layer and the file
// credential backend.
package confloader
