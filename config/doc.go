// Package config loads cloudstore configuration from a YAML file, an optional
// .env file and the process environment.
//
// Files are searched in this order unless set explicitly with WithConfigFile
// and WithEnvFile:
//
//	./<app>.yml, ./config.yml, ./config/config.yml, $XDG_CONFIG_HOME/<app>/config.yml, ~/.<app>/config.yml
//	./.env.<app>, ./.env
//
// Environment variables override file values. Keys are matched in every
// nesting variant, so STORAGE_TRANSFER_PART_SIZE reaches storage.transfer.part_size.
// When an env prefix is set (WithEnvPrefix("CLOUDSTORE")), only variables
// carrying it are considered and the prefix is stripped first.
package config
