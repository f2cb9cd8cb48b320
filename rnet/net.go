// Package rnet brings the node onto the local network.
package rnet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// ErrNetworkJoin is returned when no usable address shows up in time.
var ErrNetworkJoin = errors.New("network join failed")

// Config bounds the join. SSID and Password are handed to the OS supplicant
// and only logged here.
type Config struct {
	SSID       string
	Password   string
	Timeout    time.Duration // per attempt
	RetryDelay time.Duration
	Attempts   int
}

// DefaultConfig matches the board firmware's 10s connect timeout.
var DefaultConfig = Config{
	Timeout:    10 * time.Second,
	RetryDelay: 2 * time.Second,
	Attempts:   3,
}

const pollInterval = 250 * time.Millisecond

// Joiner waits for the node to hold an IPv4 address.
type Joiner struct {
	log   *slog.Logger
	addrs func() ([]string, error)
}

// NewJoiner checks the host's interfaces.
func NewJoiner(log *slog.Logger) *Joiner {
	return &Joiner{log: log, addrs: MyIPs}
}

// Join returns the first usable address, retrying up to cfg.Attempts times.
func (j *Joiner) Join(ctx context.Context, cfg Config) (string, error) {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}

	var last error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		j.log.Info("joining network", "ssid", cfg.SSID, "attempt", attempt)
		ip, err := j.attempt(ctx, cfg.Timeout)
		if err == nil {
			j.log.Info("connected", "ip", ip)
			return ip, nil
		}
		last = err
		if ctx.Err() != nil {
			break
		}
		j.log.Warn("failed to join network", "attempt", attempt, "err", err)
		if attempt < cfg.Attempts {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.RetryDelay):
			}
		}
	}
	return "", fmt.Errorf("%w: %s: %v", ErrNetworkJoin, cfg.SSID, last)
}

func (j *Joiner) attempt(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		ips, err := j.addrs()
		if err != nil {
			return "", err
		}
		if len(ips) > 0 {
			return ips[0], nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
}

// MyIPs lists the IPv4 addresses on up, non-loopback hardware interfaces.
func MyIPs() (mine []string, err error) {
	itfs, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("get network interfaces: %w", err)
	}

	for _, itf := range itfs {
		switch {
		case itf.Flags&net.FlagUp != net.FlagUp:
			continue // skip down interfaces
		case itf.Flags&net.FlagLoopback == net.FlagLoopback:
			continue // skip loopbacks
		case itf.HardwareAddr == nil:
			continue // not real network hardware
		case strings.Contains(itf.Name, "docker"):
			continue // ignore docker network
		}

		addrs, err := itf.Addrs()
		if err != nil {
			return nil, fmt.Errorf("get addrs: %w", err)
		}
		for _, addr := range addrs {
			ip, _, err := net.ParseCIDR(addr.String())
			if err != nil {
				continue
			}
			ipv4 := ip.To4()
			if ipv4 == nil {
				continue // skip non-ipv4 addrs
			}
			mine = append(mine, ipv4.String())
		}
	}
	return mine, nil
}
