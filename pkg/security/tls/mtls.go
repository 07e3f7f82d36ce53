package tls

import "net/http"

// ClientIdentity names the verified client of r: the subject common name of
// its certificate, or the first DNS name when the CN is empty. It returns ""
// for plain or anonymous connections.
func ClientIdentity(r *http.Request) string {
	if r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
		return ""
	}
	cert := r.TLS.PeerCertificates[0]
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	if len(cert.DNSNames) > 0 {
		return cert.DNSNames[0]
	}
	return ""
}
