// Command evcc-panel polls an evcc instance and renders its state into
// display frames served over HTTP, publishing charging transitions to MQTT.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/evcc-panel/internal/config"
	"github.com/sweeney/evcc-panel/internal/engine"
	"github.com/sweeney/evcc-panel/internal/logstore"
	"github.com/sweeney/evcc-panel/internal/mqtt"
	"github.com/sweeney/evcc-panel/internal/status"
	"github.com/sweeney/evcc-panel/internal/telemetry"
	"github.com/sweeney/evcc-panel/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	evccURL := flag.String("evcc", "", "evcc base URL (e.g. http://evcc.local:7070)")
	poll := flag.Duration("poll", 0, "evcc polling interval (0 uses config)")
	rotation := flag.Duration("rotation", 0, "idle loadpoint rotation interval (0 uses config)")
	broker := flag.String("broker", "", "MQTT broker address (empty disables MQTT)")
	httpAddr := flag.String("http", "", "HTTP status address (empty uses config)")
	logCapacity := flag.Int("log-capacity", 0, "diagnostic log ring size (0 uses config)")
	logLevel := flag.String("log-level", "", "minimum stored log level (error..verbose)")
	printFrame := flag.Bool("print-frame", false, "Fetch once, print the rendered frame as JSON and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *evccURL != "" {
		cfg.Evcc.URL = *evccURL
	}
	if *poll > 0 {
		cfg.Evcc.PollSeconds = int(*poll / time.Second)
	}
	if *rotation > 0 {
		cfg.Display.RotationSeconds = int(*rotation / time.Second)
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}
	if *logCapacity > 0 {
		cfg.Log.Capacity = *logCapacity
	}
	if *logLevel != "" {
		cfg.Log.MinLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printFrame); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, printFrame bool) error {
	logs := logstore.New(cfg.Log.Capacity, logstore.ParseLevel(cfg.Log.MinLevel, logstore.LevelError))
	client := telemetry.NewClient(cfg.Evcc.URL, cfg.Evcc.Timeout())
	eng := engine.New(engine.Options{
		BarWidth:         cfg.Display.BarWidth,
		ActivityEpsilon:  cfg.Display.ActivityEpsilon,
		RotationInterval: cfg.Display.Rotation(),
	}, time.Now(), logs)

	// Print frame mode
	if printFrame {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Evcc.Timeout())
		defer cancel()
		snap, err := client.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch state: %w", err)
		}
		frame := eng.Build(snap, time.Now())
		out, err := json.MarshalIndent(frame, "", "  ")
		if err != nil {
			return fmt.Errorf("encode frame: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		EvccURL:     cfg.Evcc.URL,
		PollMs:      cfg.Evcc.Poll().Milliseconds(),
		RotationMs:  cfg.Display.Rotation().Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
		LogCapacity: cfg.Log.Capacity,
		LogMinLevel: cfg.Log.MinLevel,
	})

	// MQTT is optional; an empty broker runs display-only.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.MQTT.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		mqttStatus = real

		startup := mqtt.SystemEvent{
			Timestamp: time.Now(),
			Event:     "STARTUP",
			Retained:  true,
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, logs)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: evcc=%s poll=%v rotation=%v broker=%s",
		cfg.Evcc.URL, cfg.Evcc.Poll(), cfg.Display.Rotation(), cfg.MQTT.Broker)
	logs.Infof("panel started, polling %s every %v", cfg.Evcc.URL, cfg.Evcc.Poll())

	ticker := time.NewTicker(cfg.Evcc.Poll())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(client, publisher, mqttStatus, tracker, eng, logs, time.Now, ticker.C, sigCh)
}

func runLoop(fetcher telemetry.Fetcher, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, eng *engine.Engine, logs *logstore.Store, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	var charging []bool
	baselined := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			logs.Infof("shutting down on %s", signalName)
			if publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			t := now()
			snap, err := fetcher.Fetch(context.Background())
			if err != nil {
				logs.Warnf("evcc fetch failed: %v", err)
				tracker.FetchFailed(snap.ConsecutiveFailures, err)
				continue
			}

			frame := eng.Build(snap, t)
			tracker.Update(snap, frame)

			if !baselined {
				charging = make([]bool, len(snap.Loadpoints))
				for i, lp := range snap.Loadpoints {
					charging[i] = lp.Charging
				}
				baselined = true
			} else {
				for i, lp := range snap.Loadpoints {
					if i >= len(charging) {
						charging = append(charging, lp.Charging)
						continue
					}
					if lp.Charging == charging[i] {
						continue
					}
					charging[i] = lp.Charging

					eventType := mqtt.ChargingStopped
					if lp.Charging {
						eventType = mqtt.ChargingStarted
					}
					logs.Infof("loadpoint %d: %s", i+1, eventType)
					log.Printf("event: %s (loadpoint %d, %.0fW)", eventType, i+1, lp.ChargePower)
					if publisher != nil {
						event := mqtt.ChargeEvent{
							Timestamp:   t,
							Type:        eventType,
							Loadpoint:   i + 1,
							Title:       lp.Title,
							ChargePower: lp.ChargePower,
						}
						if err := publisher.PublishCharge(event); err != nil {
							log.Printf("publish error: %v", err)
							// Don't crash on publish failure
						}
					}
				}
			}

			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}
}
