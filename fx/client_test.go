package fx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rb-rbloxk/ClubLiquidez-1/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratesServer(t *testing.T, hits *int32, status int, payload interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "", 0, nil)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.NotNil(t, c.logger)

	c = NewClient("http://example.test/latest/", "k", time.Second, nil)
	assert.Equal(t, "http://example.test/latest", c.baseURL)
}

func TestFetchRate_Success(t *testing.T) {
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(latestResponse{
			Base:  "EUR",
			Rates: map[string]float64{"USD": 1.085, "JPY": 161.2},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second, nil)
	rate, err := c.FetchRate(context.Background(), "eur", "usd")
	require.NoError(t, err)

	assert.Equal(t, 1.085, rate)
	assert.Equal(t, "/EUR", path)
	assert.Equal(t, "Bearer secret", auth)
}

func TestFetchRate_MissingQuote(t *testing.T) {
	srv := ratesServer(t, nil, http.StatusOK, latestResponse{
		Base:  "EUR",
		Rates: map[string]float64{"GBP": 0.85},
	})

	c := NewClient(srv.URL, "", time.Second, nil)
	_, err := c.FetchRate(context.Background(), "EUR", "USD")
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrRateUnavailable))
}

func TestFetchRate_EmptyRates(t *testing.T) {
	srv := ratesServer(t, nil, http.StatusOK, map[string]string{"result": "error"})

	c := NewClient(srv.URL, "", time.Second, nil)
	_, err := c.FetchRate(context.Background(), "EUR", "USD")
	assert.True(t, errors.Is(err, market.ErrRateUnavailable))
}

func TestFetchRate_NonSuccessStatus(t *testing.T) {
	srv := ratesServer(t, nil, http.StatusServiceUnavailable, map[string]string{"error": "down"})

	c := NewClient(srv.URL, "", time.Second, nil)
	_, err := c.FetchRate(context.Background(), "EUR", "USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestFetchRate_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, nil)
	_, err := c.FetchRate(context.Background(), "EUR", "USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestFetchRate_CallerCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(latestResponse{Rates: map[string]float64{"USD": 1}})
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "", 2*time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.FetchRate(ctx, "EUR", "USD")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLatest_CoalescesConcurrentRequests(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		json.NewEncoder(w).Encode(latestResponse{Rates: map[string]float64{"USD": 1.2}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 2*time.Second, nil)

	const n = 8
	var wg sync.WaitGroup
	results := make([]float64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.FetchRate(context.Background(), "EUR", "USD")
		}(i)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	for _, r := range results {
		assert.Equal(t, 1.2, r)
	}
}

func TestLatest_RequiresBase(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "", time.Second, nil)
	_, err := c.Latest(context.Background(), " ")
	assert.Error(t, err)
}

func TestClientSatisfiesRateSource(t *testing.T) {
	var hits int32
	srv := ratesServer(t, &hits, http.StatusOK, latestResponse{Rates: map[string]float64{"USD": 1.1}})

	var src market.RateSource = NewClient(srv.URL, "", time.Second, nil)
	q := market.ResolveRate(context.Background(), src, "EUR", "USD", time.Second)
	assert.True(t, q.IsRealTime)
	assert.Equal(t, 1.1, q.Rate)

	q = market.ResolveRate(context.Background(), src, "EUR", "BTC", time.Second)
	assert.False(t, q.Available)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
