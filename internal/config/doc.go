// Package config provides configuration management for mammut.
//
// Configuration is resolved in three layers, later layers winning:
//
//  1. Built-in defaults (see GetDefaultConfig).
//  2. config.yaml in the mammut home directory, if present.
//  3. MAMMUT_* environment variables.
//
// # Home Directory
//
// The home directory holds config.yaml and the credential caches apps.json
// and tokens.json. It defaults to ~/.mammut and can be moved with
// MAMMUT_HOME. The home directory itself cannot be set from config.yaml.
//
// # Configuration File
//
// Example ~/.mammut/config.yaml:
//
//	callbackPort: 4000
//	clientName: mammut
//	website: https://example.org/mammut
//	scopes:
//	  - read
//	loginTimeout: 5m
//	openBrowser: true
//
// # Environment Variables
//
//	MAMMUT_HOME            home directory
//	MAMMUT_CALLBACK_PORT   local redirect port, 0 for ephemeral
//	MAMMUT_CLIENT_NAME     client_name used when registering apps
//	MAMMUT_WEBSITE         website used when registering apps
//	MAMMUT_SCOPES          comma separated scopes
//	MAMMUT_LOGIN_TIMEOUT   maximum wait for the browser, 0 for none
//	MAMMUT_OPEN_BROWSER    launch the browser automatically
package config
