package jukectl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"jukebot/internal/config"
	"jukebot/internal/lavalink"
	"jukebot/pkg/types"
)

func loadBotConfig(cfg *Config) (config.Config, error) {
	c, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return config.FromEnv(c).ApplyDefaults(), nil
}

func nodeClient(bc config.Config) *lavalink.Client {
	return lavalink.NewClient(lavalink.ClientConfig{
		BaseURL:  bc.Lavalink.BaseURL(),
		Password: bc.Lavalink.Password,
	})
}

func fnNodeWait(cfg *Config, timeout time.Duration) error {
	bc, err := loadBotConfig(cfg)
	if err != nil {
		return err
	}
	client := nodeClient(bc)
	infof("waiting for %s", client.BaseURL())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for {
		v, err := client.Version(ctx)
		if err == nil {
			fmt.Printf("node ready, version %s\n", v)
			return nil
		}
		debugf("probe: %v", err)
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return fmt.Errorf("timed out after %s waiting for %s", timeout, client.BaseURL())
		}
	}
}

func fnNodeInfo(cfg *Config) error {
	bc, err := loadBotConfig(cfg)
	if err != nil {
		return err
	}
	client := nodeClient(bc)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := client.NodeInfo(ctx)
	if err != nil {
		return fmt.Errorf("node info: %w", err)
	}
	fmt.Printf("version:    %s\n", info.Version.Semver)
	fmt.Printf("jvm:        %s\n", info.JVM)
	fmt.Printf("lavaplayer: %s\n", info.Lavaplayer)
	fmt.Printf("sources:    %s\n", strings.Join(info.SourceManagers, ", "))
	for _, p := range info.Plugins {
		fmt.Printf("plugin:     %s %s\n", p.Name, p.Version)
	}

	stats, err := client.NodeStats(ctx)
	if err != nil {
		warnf("stats: %v", err)
		return nil
	}
	fmt.Printf("players:    %d (%d playing)\n", stats.Players, stats.PlayingPlayers)
	fmt.Printf("uptime:     %s\n", (time.Duration(stats.UptimeMS) * time.Millisecond).Round(time.Second))
	return nil
}

func fnNodeSpawnCheck(cfg *Config) error {
	bc, err := loadBotConfig(cfg)
	if err != nil {
		return err
	}
	jar, err := lavalink.FindNewestJar(bc.Lavalink.JarDir)
	if err != nil {
		return fmt.Errorf("jar: %w", err)
	}
	st, err := os.Stat(jar)
	if err != nil {
		return fmt.Errorf("jar: %w", err)
	}
	java, err := exec.LookPath("java")
	if err != nil {
		return fmt.Errorf("java not found: %w", err)
	}
	fmt.Printf("jar:        %s (modified %s)\n", jar, st.ModTime().Format("2006-01-02 15:04"))
	fmt.Printf("java:       %s\n", java)
	fmt.Printf("autostart:  %v\n", bc.Lavalink.Autostart)
	return nil
}

func fnCanary(cfg *Config, query string) error {
	body, err := json.Marshal(types.ResolveRequest{Query: query})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	url := strings.TrimRight(cfg.DaemonURL, "/") + "/v1/resolve"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	infof("resolving through %s", cfg.DaemonURL)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("daemon returned %s", resp.Status)
		}
		return fmt.Errorf("resolution failed (%s): %s", apiErr.Kind, apiErr.Error)
	}

	var rr types.ResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("bad response: %w", err)
	}
	printOutcome(rr.Outcome)
	return nil
}

func printOutcome(o types.ResolutionOutcome) {
	if t := o.Track; t != nil {
		line := t.Title
		if t.Author != "" {
			line += " by " + t.Author
		}
		fmt.Println(line)
		fmt.Println(t.URI)
	}
	fmt.Printf("winner: %s in %dms (hedge launched: %v)\n", o.Winner, o.DurationMS, o.HedgeLaunched)
	for _, a := range o.Attempts {
		status := "won"
		switch {
		case a.Err != "":
			status = fmt.Sprintf("%s: %s", a.ErrKind, a.Err)
		case a.Backend != o.Winner:
			status = "abandoned"
		}
		fmt.Printf("  %-8s start +%dms, ran %dms, %s\n", a.Backend, a.StartOffsetMS, a.DurationMS, status)
	}
}

func fnYTDLPVersion(cfg *Config) error {
	bc, err := loadBotConfig(cfg)
	if err != nil {
		return err
	}
	bin := bc.Extractor.YTDLPPath
	if bin == "" {
		bin = "yt-dlp"
	}
	out, err := runCapture(context.Background(), 10*time.Second, bin, "--version")
	if err != nil {
		return fmt.Errorf("%s --version: %w", bin, err)
	}
	fmt.Println(strings.TrimSpace(out))
	return nil
}

func fnEnv(cfg *Config) error {
	bc, err := loadBotConfig(cfg)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(bc.Redacted())
}
