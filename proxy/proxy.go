package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
)

// Func picks the proxy for a request, matching http.Transport.Proxy.
type Func func(*http.Request) (*url.URL, error)

type roundRobinSwitcher struct {
	proxyURLs []*url.URL
	index     uint32
}

func (r *roundRobinSwitcher) GetProxy(pr *http.Request) (*url.URL, error) {
	index := atomic.AddUint32(&r.index, 1) - 1
	u := r.proxyURLs[index%uint32(len(r.proxyURLs))]
	return u, nil
}

// RoundRobinSwitcher rotates through proxyURLs, one per request.
func RoundRobinSwitcher(proxyURLs ...string) (Func, error) {
	if len(proxyURLs) < 1 {
		return nil, errors.New("proxy url list is empty")
	}
	urls := make([]*url.URL, 0, len(proxyURLs))
	for _, u := range proxyURLs {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url %q: %w", u, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("proxy url %q needs scheme and host", u)
		}
		urls = append(urls, parsed)
	}
	return (&roundRobinSwitcher{proxyURLs: urls}).GetProxy, nil
}
