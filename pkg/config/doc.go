// Package config loads swellow.yaml.
//
// Every setting in the file can be overridden on the command line or through
// the environment. The file exists so that engine specific options, such as
// ClickHouse mTLS or the lakehouse schemas to snapshot, don't need to be
// repeated on every invocation.
package config
