package cmd

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch real-time ingestion progress",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		watchProgress()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watchProgress() {
	host := strings.TrimPrefix(strings.TrimPrefix(serverURL, "http://"), "https://")
	u := url.URL{Scheme: "ws", Host: host, Path: "/ws/progress"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	fmt.Println("WebSocket connected. Waiting for progress events...")

	for {
		var event struct {
			MeetingID string `json:"meeting_id"`
			Stage     string `json:"stage"`
		}
		if err := c.ReadJSON(&event); err != nil {
			log.Println("read:", err)
			return
		}
		fmt.Printf("%s: %s\n", event.MeetingID, event.Stage)
	}
}
