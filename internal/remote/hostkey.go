package remote

import (
	"net"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/shellgate/shellgate/internal/logger"
)

// hostKeyRecorder implements the trust-and-remember host key policy: the
// first key a host presents is recorded, later keys are compared against it
// and a change is logged loudly, but no connection is ever rejected over a
// host key.
//
// Known weakness, kept on purpose: first contact is trusted blindly and a
// changed key is only detected, never prevented. Operators who need real
// host key verification should front the gateway with a bastion that has it.
type hostKeyRecorder struct {
	mu   sync.Mutex
	seen map[string]string // host -> SHA256 fingerprint
	log  logger.Logger
}

func newHostKeyRecorder(log logger.Logger) *hostKeyRecorder {
	return &hostKeyRecorder{
		seen: make(map[string]string),
		log:  log,
	}
}

// check is an ssh.HostKeyCallback. It always returns nil.
func (r *hostKeyRecorder) check(hostname string, remote net.Addr, key ssh.PublicKey) error {
	fingerprint := ssh.FingerprintSHA256(key)

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, known := r.seen[hostname]
	switch {
	case !known:
		r.seen[hostname] = fingerprint
		r.log.Debug("recorded host key on first contact",
			logger.String("host", hostname),
			logger.String("fingerprint", fingerprint))
	case previous != fingerprint:
		r.seen[hostname] = fingerprint
		r.log.Warn("host key changed since last contact",
			logger.String("host", hostname),
			logger.String("previous", previous),
			logger.String("fingerprint", fingerprint))
	}

	return nil
}
