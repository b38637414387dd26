package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Fires a burst of concurrent taps at one card to exercise the engine's
// contention handling. Every response should be a grant or a clean policy
// denial; a double-debit would show up as more grants than rides purchased.
func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "API base URL")
		card     = flag.String("card", "GA-00001", "card number to hammer")
		location = flag.String("location", "Cape Town CBD", "boarding location")
		burst    = flag.Int("burst", 20, "concurrent taps to fire")
	)
	flag.Parse()

	log := logrus.New()
	client := &http.Client{Timeout: 10 * time.Second}
	endpoint := fmt.Sprintf("%s/api/ga/cards/%s/tap", *baseURL, *card)

	body, _ := json.Marshal(map[string]string{"location": *location})

	var wg sync.WaitGroup
	var mu sync.Mutex
	outcomes := map[string]int{}

	start := time.Now()
	for i := 0; i < *burst; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
			if err != nil {
				mu.Lock()
				outcomes["transport_error"]++
				mu.Unlock()
				return
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			mu.Lock()
			outcomes[fmt.Sprintf("http_%d", resp.StatusCode)]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	log.WithFields(logrus.Fields{
		"card":     *card,
		"burst":    *burst,
		"duration": time.Since(start).String(),
	}).Info("tap storm complete")
	for outcome, count := range outcomes {
		log.Infof("  %s: %d", outcome, count)
	}
}
