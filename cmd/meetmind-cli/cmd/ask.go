package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"MeetMind/internal/models"

	"github.com/spf13/cobra"
)

var showChunks bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the meeting memory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		askQuestion(args[0])
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&showChunks, "chunks", false, "print the supporting chunks as well")
}

func askQuestion(question string) {
	jsonPayload, err := json.Marshal(map[string]string{"query": question})
	if err != nil {
		log.Fatalf("Error creating JSON payload: %v", err)
	}

	resp, err := http.Post(serverURL+"/api/v1/query", "application/json", bytes.NewBuffer(jsonPayload))
	if err != nil {
		log.Fatalf("Error submitting query: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Query failed, status code: %d, body: %s", resp.StatusCode, body)
	}

	var result models.QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		log.Fatalf("Error decoding response: %v", err)
	}

	fmt.Printf("[%s]\n", result.QueryType)
	if result.Answer != "" {
		fmt.Println(result.Answer)
	} else {
		fmt.Printf("%d supporting chunks found (no answer synthesis configured).\n", len(result.Chunks))
	}

	if showChunks {
		for _, c := range result.Chunks {
			fmt.Printf("\n- %s | %s | %s\n  %s\n", c.ChunkID, c.Timestamp.Format("2006-01-02"), c.Speaker, c.Content)
		}
	}
}
