package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"MeetMind/internal/models"

	"github.com/spf13/cobra"
)

var (
	meetingID    string
	meetingTitle string
	meetingDate  string
	participants string
	platform     string
	project      string
	asyncIngest  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [transcript-file]",
	Short: "Ingest a meeting transcript into memory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ingestTranscript(args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&meetingID, "id", "", "meeting id (required)")
	ingestCmd.Flags().StringVar(&meetingTitle, "title", "", "meeting title")
	ingestCmd.Flags().StringVar(&meetingDate, "date", "", "meeting date, RFC 3339 (defaults to now)")
	ingestCmd.Flags().StringVar(&participants, "participants", "", "comma-separated participant names")
	ingestCmd.Flags().StringVar(&platform, "platform", "", "source platform (Teams, Zoom, Slack, ...)")
	ingestCmd.Flags().StringVar(&project, "project", "", "project the meeting belongs to")
	ingestCmd.Flags().BoolVar(&asyncIngest, "async", false, "enqueue for background processing instead of waiting")
	ingestCmd.MarkFlagRequired("id")
}

func ingestTranscript(path string) {
	transcript, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading transcript file: %v", err)
	}

	date := time.Now()
	if meetingDate != "" {
		date, err = time.Parse(time.RFC3339, meetingDate)
		if err != nil {
			log.Fatalf("Error parsing --date (want RFC 3339, e.g. 2026-08-27T10:00:00Z): %v", err)
		}
	}

	meeting := models.Meeting{
		MeetingID: meetingID,
		Title:     meetingTitle,
		Date:      date,
		Platform:  platform,
		Project:   project,
	}
	if participants != "" {
		meeting.Participants = strings.Split(participants, ",")
	}

	payload := map[string]interface{}{
		"meeting":    meeting,
		"transcript": string(transcript),
		"async":      asyncIngest,
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("Error creating JSON payload: %v", err)
	}

	resp, err := http.Post(serverURL+"/api/v1/meetings", "application/json", bytes.NewBuffer(jsonPayload))
	if err != nil {
		log.Fatalf("Error submitting transcript: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		log.Fatalf("Failed to ingest transcript, status code: %d, body: %s", resp.StatusCode, body)
	}

	if resp.StatusCode == http.StatusAccepted {
		fmt.Printf("Transcript enqueued for processing.\n")
		fmt.Printf("To watch progress, run: meetmind-cli watch\n")
		return
	}

	var result struct {
		MeetingID  string   `json:"meeting_id"`
		Chunks     int      `json:"chunks"`
		Links      int      `json:"links"`
		Unresolved []string `json:"unresolved"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		log.Fatalf("Error decoding response: %v", err)
	}

	fmt.Printf("Meeting %s ingested: %d chunks, %d temporal links.\n", result.MeetingID, result.Chunks, result.Links)
	for _, open := range result.Unresolved {
		fmt.Printf("  unresolved reference: %s\n", open)
	}
}
