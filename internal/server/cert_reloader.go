package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
)

// CertReloader serves the current TLS certificate and swaps it in place
// when the certificate files change on disk. Rotation never interrupts
// established connections; new handshakes pick up the new pair.
type CertReloader struct {
	mu   sync.RWMutex
	cert *tls.Certificate

	certFile string
	keyFile  string

	fsWatcher     *fsnotify.Watcher
	debounceTimer *time.Timer
	debounceMu    sync.Mutex
	stopChan      chan struct{}
	watching      bool
	reloadCount   atomic.Int64

	logger *forgeErrors.Logger
}

// NewCertReloader loads the initial certificate pair from disk.
func NewCertReloader(tlsCfg *config.TLSConfig, logger *forgeErrors.Logger) (*CertReloader, error) {
	cr := &CertReloader{
		certFile: tlsCfg.CertFile,
		keyFile:  tlsCfg.KeyFile,
		stopChan: make(chan struct{}),
		logger:   logger,
	}

	if err := cr.Reload(); err != nil {
		return nil, err
	}

	return cr, nil
}

// GetCertificate hands the current certificate to new TLS handshakes.
func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	if cr.cert == nil {
		return nil, fmt.Errorf("no certificate loaded")
	}
	return cr.cert, nil
}

// Reload reads the certificate pair from disk and swaps it in. A failed
// reload keeps the previous certificate serving.
func (cr *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(cr.certFile, cr.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate pair: %w", err)
	}

	// Parse the leaf eagerly so expiry checks do not reparse per call
	if cert.Leaf == nil && len(cert.Certificate) > 0 {
		if leaf, parseErr := x509.ParseCertificate(cert.Certificate[0]); parseErr == nil {
			cert.Leaf = leaf
		}
	}

	cr.mu.Lock()
	cr.cert = &cert
	cr.mu.Unlock()
	cr.reloadCount.Add(1)

	return nil
}

// CheckExpiry returns the time remaining until the serving certificate
// expires. Negative means already expired.
func (cr *CertReloader) CheckExpiry() (time.Duration, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.cert == nil || cr.cert.Leaf == nil {
		return 0, fmt.Errorf("no parsed certificate available")
	}
	return time.Until(cr.cert.Leaf.NotAfter), nil
}

// StartWatching begins watching the certificate files for changes. Events
// are debounced because rotation tooling typically rewrites the cert and
// key as two separate operations.
func (cr *CertReloader) StartWatching(debounceDelay time.Duration) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.watching {
		return fmt.Errorf("certificate watcher is already running")
	}
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directories rather than the files so atomic writes
	// (write to temp, rename over) are caught.
	dirs := map[string]bool{}
	for _, file := range []string{cr.certFile, cr.keyFile} {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	cr.fsWatcher = watcher
	cr.watching = true
	go cr.watchLoop(debounceDelay)

	cr.logger.Info("Certificate file watcher started",
		"cert_file", cr.certFile,
		"key_file", cr.keyFile,
		"debounce_delay", debounceDelay)

	return nil
}

func (cr *CertReloader) watchLoop(debounceDelay time.Duration) {
	for {
		select {
		case event, ok := <-cr.fsWatcher.Events:
			if !ok {
				return
			}
			if cr.isCertEvent(event) {
				cr.scheduleReload(debounceDelay)
			}
		case err, ok := <-cr.fsWatcher.Errors:
			if !ok {
				return
			}
			cr.logger.LogError(err, "Certificate watcher error")
		case <-cr.stopChan:
			return
		}
	}
}

// isCertEvent reports whether a filesystem event concerns one of the
// certificate files.
func (cr *CertReloader) isCertEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	return base == filepath.Base(cr.certFile) || base == filepath.Base(cr.keyFile)
}

func (cr *CertReloader) scheduleReload(debounceDelay time.Duration) {
	cr.debounceMu.Lock()
	defer cr.debounceMu.Unlock()

	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.debounceTimer = time.AfterFunc(debounceDelay, func() {
		if err := cr.Reload(); err != nil {
			cr.logger.LogError(err, "Failed to reload TLS certificates")
			return
		}
		cr.logger.Info("TLS certificates reloaded",
			"reload_count", cr.reloadCount.Load())
	})
}

// Stop stops the file watcher. The loaded certificate keeps serving.
func (cr *CertReloader) Stop() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.watching {
		return nil
	}

	close(cr.stopChan)

	cr.debounceMu.Lock()
	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.debounceMu.Unlock()

	err := cr.fsWatcher.Close()
	cr.watching = false

	cr.logger.Info("Certificate file watcher stopped")
	return err
}

// IsWatching reports whether the file watcher is running.
func (cr *CertReloader) IsWatching() bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.watching
}

// ReloadCount returns how many times certificates were loaded, the initial
// load included.
func (cr *CertReloader) ReloadCount() int64 {
	return cr.reloadCount.Load()
}
