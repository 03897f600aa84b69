package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"
	"github.com/spf13/cobra"

	"github.com/masonvale/notifyhub/internal/event"
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish [event-type] [payload-json]",
	Short: "Publish an event to the bus",
	Long: `Publish an event to the bus topic named after its type.

A fresh event id is generated unless --event-id is given; pass --no-id to
publish an event without an id (the consumer processes those with a warning
and without dedup). Repeating a publish with the same --event-id simulates
broker redelivery.

Example:
  notifyctl publish USER_REGISTERED '{"username":"alice","email":"a@x.com"}'
  notifyctl publish LOW_STOCK_ALERT '{"productName":"Widget","currentStock":3,"threshold":10}' --event-id e-42
  notifyctl publish LOW_STOCK_ALERT '{"productName":"Widget","currentStock":3,"threshold":10}' --event-id e-42 --count 3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventType := args[0]
		payloadJSON := args[1]

		eventID, _ := cmd.Flags().GetString("event-id")
		noID, _ := cmd.Flags().GetBool("no-id")
		count, _ := cmd.Flags().GetInt("count")

		var payload map[string]any
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return fmt.Errorf("invalid payload JSON: %w", err)
		}

		switch {
		case noID:
			eventID = ""
		case eventID == "":
			eventID = uuid.NewString()
		}

		env := event.Envelope{
			EventID:     eventID,
			EventType:   eventType,
			Payload:     payload,
			PublishedAt: time.Now().UTC().Format(time.RFC3339),
		}
		body, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("marshal envelope: %w", err)
		}

		producer, err := nsq.NewProducer(nsqdAddr, nsq.NewConfig())
		if err != nil {
			return fmt.Errorf("nsq producer: %w", err)
		}
		defer producer.Stop()

		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			if err := producer.Publish(eventType, body); err != nil {
				return fmt.Errorf("nsq publish: %w", err)
			}
		}

		if eventID == "" {
			fmt.Printf("Published %d event(s) without id to topic %s\n", count, eventType)
		} else {
			fmt.Printf("Published %d event(s) %s to topic %s\n", count, eventID, eventType)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().String("event-id", "", "event id (default: a generated uuid)")
	publishCmd.Flags().Bool("no-id", false, "publish without an event id")
	publishCmd.Flags().Int("count", 1, "publish the same envelope N times (simulates redelivery)")
}
