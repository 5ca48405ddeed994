package clickhouse

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

type (
	// TLSSettings locates the files used for mTLS.
	TLSSettings struct {
		// CertFile and KeyFile are the client certificate.
		CertFile string
		KeyFile  string

		// CAFile is the CA bundle used to verify the server. The system pool
		// is used when empty.
		CAFile string
	}

	// ClientOptions configures the connection.
	ClientOptions struct {
		TLSSettings

		// IgnoreDatabases are left out of snapshots, in addition to the
		// system databases.
		IgnoreDatabases []string

		// MutationsSync forces lock release through a synchronous mutation
		// even on servers supporting lightweight deletes.
		MutationsSync bool
	}
)

// UsesTLS reports whether a client certificate was configured.
func (o ClientOptions) UsesTLS() bool {
	return o.CertFile != "" || o.KeyFile != ""
}

// GetTLSConfig creates a TLS config for connection to clickhouse over mTLS
//
// Example usage:
//
//	tls, err := GetTLSConfig(opts)
//	if err != nil {
//		return err
//	}
func GetTLSConfig(opts ClientOptions) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load certfile/keyfile")
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if opts.CAFile == "" {
		return cfg, nil
	}

	caCert, err := os.ReadFile(opts.CAFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load CAfile")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, errors.Errorf("no certificates found in CAfile %s", opts.CAFile)
	}

	cfg.RootCAs = pool
	return cfg, nil
}
