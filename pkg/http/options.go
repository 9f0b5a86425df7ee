package http

import "time"

// HttpOpts tunes the client built by NewConnector.
// Zero durations and counts keep the defaults.
type HttpOpts func(*httpConfig)

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) { setDuration(&c.connClientTimeout, timeout) }
}

// WithRequestTimeout bounds a whole request, body read included.
func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) { setDuration(&c.requestTimeout, timeout) }
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *httpConfig) { setDuration(&c.clientKeepAlive, keepAlive) }
}

func WithTLSHandshakeTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) { setDuration(&c.tlsHandshakeTimeout, timeout) }
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) { setDuration(&c.responseHeaderTimeout, timeout) }
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) { setDuration(&c.idleConnTimeout, timeout) }
}

func WithMaxIdleConns(maxConns int) HttpOpts {
	return func(c *httpConfig) { setInt(&c.maxIdleConns, maxConns) }
}

func WithMaxIdleConnsPerHost(maxConns int) HttpOpts {
	return func(c *httpConfig) { setInt(&c.maxIdleConnsPerHost, maxConns) }
}

// WithTransport wraps the base transport; wrappers apply in the order given.
func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *httpConfig) {
		c.transports = append(c.transports, transport)
	}
}

func WithInsecureSkipVerify(skip bool) HttpOpts {
	return func(c *httpConfig) {
		c.insecureSkipVerify = skip
	}
}
