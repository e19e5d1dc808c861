// Package config loads whistle configuration files.
//
// Load looks for whistle.json, whistle.jsonc, whistle.yaml or whistle.yml
// in a directory. JSON files may contain comments. Missing fields keep
// their defaults.
//
// # Configuration File Structure
//
//	{
//	  // Default socket for mount points without data-whistle-socket.
//	  "socket": {
//	    "url": "ws://localhost:4000/ws",
//	    "baseDelay": "1s",
//	    "maxDelay": "30s",
//	    "writeTimeout": "10s",
//	    "handshakeTimeout": "10s",
//	    "maxMessageSize": 1048576
//	  },
//	  "events": {
//	    "debounceDelay": "250ms"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "debug": {
//	    "addr": "127.0.0.1:9090"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	logger := cfg.NewLogger(os.Stderr)
//	socketConfig := cfg.ClientConfig()
package config
