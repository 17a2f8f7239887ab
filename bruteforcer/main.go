package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type GameState struct {
	Player      Position `json:"player"`
	ActiveField string   `json:"active_field"`
	Status      string   `json:"status"`
	LastOutcome string   `json:"last_outcome"`
	Message     string   `json:"message"`
	TotalMoves  int      `json:"total_moves"`
}

type SessionResponse struct {
	ID         string     `json:"id"`
	PresetName string     `json:"preset_name"`
	GameState  *GameState `json:"game_state"`
}

type BulkMoveResponse struct {
	MovesExecuted int        `json:"moves_executed"`
	Success       bool       `json:"success"`
	Finished      bool       `json:"finished"`
	GameState     *GameState `json:"game_state"`
	Message       string     `json:"message"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(presetName string) (*GameState, error) {
	var reqBody []byte
	var err error

	if presetName != "" {
		reqBody, err = json.Marshal(map[string]string{"preset": presetName})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get state failed: %s", resp.Status)
	}

	var session SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return session.GameState, nil
}

// TrySequence resets the session and replays the whole candidate in one
// bulk call.
func (c *Client) TrySequence(moves []string) (*BulkMoveResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"moves": moves,
		"reset": true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal moves: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/bulk-move", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("bulk move: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bulk move failed: %s - %s", resp.Status, string(respBody))
	}

	var bulkResp BulkMoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return nil, fmt.Errorf("parse bulk response: %w", err)
	}

	return &bulkResp, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Level server URL")
	presetName := flag.String("preset", "", "Preset name for the session (default preset when empty)")
	continueSession := flag.String("continue", "", "Attack an existing session by ID")
	maxDepth := flag.Int("max-depth", 10, "Maximum sequence length to try")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between attempts in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to level server at %s", *serverURL)
	client := NewClient(*serverURL)

	if *continueSession != "" {
		client.sessionID = *continueSession
		if _, err := client.GetState(); err != nil {
			log.Fatalf("Failed to attach to session %s: %v", *continueSession, err)
		}
		log.Printf("Attacking existing session: %s", client.sessionID)
	} else {
		if _, err := client.CreateSession(*presetName); err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("Session created: %s", client.sessionID)
	}

	enum := NewSequenceEnumerator()
	attempts := 0
	start := time.Now()

	for depth := 1; depth <= *maxDepth; depth++ {
		log.Printf("=== Depth %d ===", depth)

		for _, seq := range enum.SequencesOfLength(depth) {
			attempts++

			result, err := client.TrySequence(seq)
			if err != nil {
				log.Fatalf("Attempt %d failed: %v", attempts, err)
			}

			if *verbose && attempts%100 == 0 {
				log.Printf("Tried %d sequences, last: %s", attempts, strings.Join(seq, ","))
			}

			if result.GameState != nil && result.GameState.Status == "solved" {
				elapsed := time.Since(start).Round(time.Millisecond)
				log.Printf("SOLVED in %d moves after %d attempts (%s): %s",
					len(seq), attempts, elapsed, strings.Join(seq, ", "))
				log.Printf("Session: %s", client.sessionID)
				os.Exit(0)
			}

			if *delayMs > 0 {
				time.Sleep(time.Duration(*delayMs) * time.Millisecond)
			}
		}
	}

	log.Printf("No solution found up to depth %d after %d attempts", *maxDepth, attempts)
	log.Printf("Session: %s", client.sessionID)
	os.Exit(1)
}
