package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case RoomList:
		o.printRoomList(v)
	case StatsResult:
		o.printStatsResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type (matches API)
type HealthResult struct {
	Status string `json:"status"`
}

// Room response type
type Room struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	Status      string `json:"status"`
	IsPrivate   bool   `json:"isPrivate"`
}

// RoomList response type
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// StatsResult response type
type StatsResult struct {
	TotalRooms       int `json:"totalRooms"`
	TotalPlayers     int `json:"totalPlayers"`
	ConnectedClients int `json:"connectedClients"`
	ActiveRaces      int `json:"activeRaces"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No rooms")
		return
	}

	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		visibility := "public"
		if r.IsPrivate {
			visibility = "private"
		}
		fmt.Printf("  - %s [%s] %s, %d player(s)\n", r.ID, visibility, r.Status, r.PlayerCount)
	}
}

func (o *Output) printStatsResult(st StatsResult) {
	fmt.Printf("Rooms: %d\n", st.TotalRooms)
	fmt.Printf("Players: %d\n", st.TotalPlayers)
	fmt.Printf("Connected Clients: %d\n", st.ConnectedClients)
	fmt.Printf("Active Races: %d\n", st.ActiveRaces)
}
