// Package tls serves the `serve` HTTP listener over TLS.
//
// Certificates are loaded by a CertificateReloader, which polls the
// certificate and key files and swaps in renewed certificates without a
// restart. ServerConfig builds the crypto/tls configuration around it:
//
//	reloader := tls.NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval, logger)
//	if err := reloader.Start(ctx); err != nil {
//	    return err
//	}
//	tlsConfig, err := tls.ServerConfig(cfg, reloader)
//
// # Mutual TLS
//
// With client_auth set, client certificates are verified against
// client_ca_file, and ClientIdentity names the caller in request logs.
//
// Only TLS 1.2 and 1.3 are accepted.
package tls
