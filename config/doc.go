// Package config loads mergecat settings from a config file and MERGECAT_
// environment variables using viper.
package config
