package http

import (
	"container/list"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"billed/internal/backend"
	"billed/internal/bill"
	"billed/internal/core"
	"billed/internal/filestore"
	applog "billed/internal/log"
	appweb "billed/web"
)

// LRU cache with TTL and size-based eviction
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])

	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: now.Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries
func (c *lruCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element

	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.removeElement(elem)
	}

	return len(toRemove)
}

type Server struct {
	http.Server
	templates   *template.Template
	store       bill.Store
	reviewer    backend.Reviewer
	uploads     *filestore.Store
	logger      *applog.Logger
	httpLog     *applog.StructuredLogger
	rateLimiter *rateLimiter

	// Cached bill collection, invalidated on every write.
	billsCache *lruCache[[]core.Bill]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// startCacheCleanup runs periodic cleanup for the bills cache
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.billsCache.CleanExpired()
			if cleaned > 0 {
				s.logger.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
// reviewer may be nil when the backend has no local review surface, and uploads
// may be nil when receipt storage is disabled.
func NewServer(addr string, store bill.Store, reviewer backend.Reviewer, uploads *filestore.Store, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:            store,
		reviewer:         reviewer,
		uploads:          uploads,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		httpLog:          applog.NewStructuredLogger(logger),
		rateLimiter:      newRateLimiter(),
		billsCache:       newLRUCache[[]core.Bill](16, time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	// Uploaded receipts live on disk, not in the embedded FS.
	if uploads != nil {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir()))))
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/session", s.withSecurityHeaders(s.handleSession))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))
	mux.HandleFunc("/bills", s.withSecurityHeaders(s.handleBills))
	mux.HandleFunc("/bills/new", s.withSecurityHeaders(s.handleNewBillForm))
	mux.HandleFunc("/bills/preview", s.withSecurityHeaders(s.handlePreview))
	mux.HandleFunc("/admin/bills", s.withSecurityHeaders(s.handleAdminBills))
	mux.HandleFunc("/admin/bills/", s.withSecurityHeaders(s.handleAdminReview))

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), applog.LoggerContextKey, s.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.httpLog.LogHTTPStart(ctx, r, clientIP)

		// Rate limit writes only; reads are cheap and cached.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// cachingStore wraps the backend store with the server's bills cache. Reads
// hit the cache; every create invalidates it.
type cachingStore struct {
	s *Server
}

const billsCacheKey = "bills"

func (cs cachingStore) List(ctx context.Context) ([]core.Bill, error) {
	if bills, found := cs.s.billsCache.Get(billsCacheKey); found {
		cs.s.logger.DebugContext(ctx, "Bills cache hit", "count", len(bills))
		result := make([]core.Bill, len(bills))
		copy(result, bills)
		return result, nil
	}

	bills, err := cs.s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	cs.s.billsCache.Set(billsCacheKey, bills)
	result := make([]core.Bill, len(bills))
	copy(result, bills)
	return result, nil
}

func (cs cachingStore) Create(ctx context.Context, draft core.Bill) (core.Bill, error) {
	created, err := cs.s.store.Create(ctx, draft)
	if err != nil {
		return core.Bill{}, err
	}
	cs.s.billsCache.Delete(billsCacheKey)
	return created, nil
}

func (s *Server) invalidateBills() {
	s.billsCache.Delete(billsCacheKey)
}

// redirectNavigator satisfies the controllers' Navigator port with an HTTP
// redirect. At most one Navigate per request wins.
type redirectNavigator struct {
	w    http.ResponseWriter
	r    *http.Request
	done bool
}

func (n *redirectNavigator) Navigate(path string) {
	if n.done {
		return
	}
	n.done = true
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

// captureModal records the file the eye-icon click asked to preview.
type captureModal struct {
	opened   bool
	fileURL  string
	fileName string
}

func (m *captureModal) ShowFile(fileURL, fileName string) {
	m.opened = true
	m.fileURL = fileURL
	m.fileName = fileName
}
