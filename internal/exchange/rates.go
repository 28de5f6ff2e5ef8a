package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

const defaultURL = "https://api.bluelytics.com.ar/v2/latest"

// The pair shown when the API is unreachable, same as the card always did.
const (
	fallbackCompra = 1200.0
	fallbackVenta  = 1220.0
)

// Rate is the dólar blue quote the dashboard shows.
type Rate struct {
	Compra    float64   `json:"compra"`
	Venta     float64   `json:"venta"`
	Variacion float64   `json:"variacion"`
	Fecha     time.Time `json:"fecha"`
	Fallback  bool      `json:"fallback"`
}

type bluelyticsResponse struct {
	Blue struct {
		ValueBuy  float64 `json:"value_buy"`
		ValueSell float64 `json:"value_sell"`
	} `json:"blue"`
}

// Poller refreshes the quote on a fixed interval and serves the last
// snapshot. It never fails a request: a fetch error just pins the fallback.
type Poller struct {
	url      string
	interval time.Duration
	client   *http.Client

	mu      sync.RWMutex
	current Rate
}

func NewPoller() *Poller {
	return &Poller{
		url:      defaultURL,
		interval: 5 * time.Minute,
		client:   &http.Client{Timeout: 10 * time.Second},
		current: Rate{
			Compra:    fallbackCompra,
			Venta:     fallbackVenta,
			Variacion: fallbackVenta - fallbackCompra,
			Fecha:     time.Now(),
			Fallback:  true,
		},
	}
}

// Start fetches once right away, then keeps refreshing in the background.
func (p *Poller) Start() {
	go func() {
		p.refresh()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for range ticker.C {
			p.refresh()
		}
	}()
}

// Current returns the last snapshot (possibly the fallback pair).
func (p *Poller) Current() Rate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Poller) refresh() {
	rate, err := p.fetch()
	if err != nil {
		log.Printf("Exchange rate fetch failed, serving fallback: %v", err)
		rate = Rate{
			Compra:    fallbackCompra,
			Venta:     fallbackVenta,
			Variacion: fallbackVenta - fallbackCompra,
			Fecha:     time.Now(),
			Fallback:  true,
		}
	}

	p.mu.Lock()
	p.current = rate
	p.mu.Unlock()
}

func (p *Poller) fetch() (Rate, error) {
	resp, err := p.client.Get(p.url)
	if err != nil {
		return Rate{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Rate{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Rate{}, &statusError{code: resp.StatusCode}
	}

	var parsed bluelyticsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Rate{}, err
	}

	return Rate{
		Compra:    parsed.Blue.ValueBuy,
		Venta:     parsed.Blue.ValueSell,
		Variacion: parsed.Blue.ValueSell - parsed.Blue.ValueBuy,
		Fecha:     time.Now(),
	}, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("exchange API returned status %d", e.code)
}
