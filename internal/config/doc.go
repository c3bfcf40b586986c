// Package config defines the application configuration structures and the
// viper-based loader shared by the server and worker binaries.
package config
