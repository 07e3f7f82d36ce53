package tls

import (
	"crypto/tls"
	"fmt"

	"mercator-hq/mpl-builtins/pkg/config"
)

// ServerConfig builds the listener configuration. Certificates come from
// reloader, which must have been started.
func ServerConfig(cfg config.TLSConfig, reloader *CertificateReloader) (*tls.Config, error) {
	if reloader == nil {
		return nil, fmt.Errorf("certificate reloader is required")
	}

	// #nosec G402 - MinVersion is validated to 1.2 or 1.3
	tlsConfig := &tls.Config{
		GetCertificate: reloader.GetCertificateFunc(),
		MinVersion:     parseTLSVersion(cfg.MinVersion),
	}

	if cfg.ClientAuth != "" {
		pool, err := loadCAPool(cfg.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to configure mTLS: %w", err)
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = parseClientAuth(cfg.ClientAuth)
	}

	return tlsConfig, nil
}

func parseTLSVersion(v string) uint16 {
	if v == "1.2" {
		return tls.VersionTLS12
	}
	return tls.VersionTLS13
}

func parseClientAuth(s string) tls.ClientAuthType {
	switch s {
	case "request":
		return tls.RequestClientCert
	case "verify_if_given":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
