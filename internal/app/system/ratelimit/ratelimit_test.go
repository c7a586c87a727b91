package ratelimit

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Burst(t *testing.T) {
	l := New(60, 3, time.Minute)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("k"), "attempt %d", i+1)
	}
	assert.False(t, l.Allow("k"), "burst exhausted")
	assert.True(t, l.Allow("other"), "keys are independent")

	// One token refills per second at 60/minute.
	fixed = fixed.Add(time.Second)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}

func TestLimiter_ResetAndPrune(t *testing.T) {
	l := New(60, 1, time.Minute)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	l.Reset("k")
	assert.True(t, l.Allow("k"))

	fixed = fixed.Add(2 * time.Minute)
	l.Allow("fresh")
	assert.Equal(t, 1, l.Len(), "idle key should be pruned")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", ClientIP(r))

	r.Header.Set("X-Real-IP", "172.16.0.9")
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "10.1.2.3", ClientIP(r), "forwarding headers are ignored")

	r.RemoteAddr = "10.9.9.9"
	assert.Equal(t, "10.9.9.9", ClientIP(r))
}

func TestLoginLimiter_RotatingForwardedForStillThrottled(t *testing.T) {
	ll := NewLoginLimiter(10, 2)

	allowed := 0
	for i := 0; i < 5; i++ {
		r := httptest.NewRequest("POST", "/auth/login", nil)
		r.RemoteAddr = "198.51.100.7:1234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		// A different login id each time keeps the account limit out of it.
		if ok, _ := ll.Check(r, fmt.Sprintf("user%d", i)); ok {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed, "only the burst should pass from one address")
}

func TestLoginLimiter(t *testing.T) {
	ll := NewLoginLimiter(10, 2)
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "198.51.100.1:1234"

	ok, _ := ll.Check(r, "Pat")
	assert.True(t, ok)
	ok, _ = ll.Check(r, "pat ")
	assert.True(t, ok)

	// Third attempt from the same IP exceeds the burst.
	ok, reason := ll.Check(r, "pat")
	assert.False(t, ok)
	assert.Contains(t, reason, "Too many")
}

func TestLoginLimiter_AccountAcrossIPs(t *testing.T) {
	ll := NewLoginLimiter(10, 2)
	for i, ip := range []string{"192.0.2.1:1", "192.0.2.2:1"} {
		r := httptest.NewRequest("POST", "/auth/login", nil)
		r.RemoteAddr = ip
		ok, _ := ll.Check(r, "target")
		assert.True(t, ok, "attempt %d", i+1)
	}
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "192.0.2.3:1"
	ok, reason := ll.Check(r, "TARGET")
	assert.False(t, ok)
	assert.Contains(t, reason, "this account")

	ll.ResetAccount("target")
	ok, _ = ll.Check(r, "target")
	assert.True(t, ok)
}
