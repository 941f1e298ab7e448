package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Client -> Server message types
const (
	MsgInput    = "input"
	MsgMode     = "mode"
	MsgName     = "name"
	MsgStart    = "start" // also Server -> Client
	MsgRematch  = "rematch"
	MsgParams   = "params"
	MsgAnnounce = "announce"
)

// Server -> Client message types
const (
	MsgAssign    = "assign"
	MsgLobby     = "lobby"
	MsgState     = "state" // binary msgpack frame, never enveloped
	MsgEvent     = "event"
	MsgGameOver  = "gameover"
	MsgCountdown = "countdown"
	MsgFull      = "full"
)

// Event names carried in MsgEvent payloads
const (
	EventSave       = "save"
	EventNearMiss   = "nearMiss"
	EventCommentary = "commentary"
	EventGoal       = "goal"
	EventGameOver   = "gameOver"
	EventGameStart  = "gameStart"
)

// Shot actions carried by InputCmd
const (
	ActionPress   = "down"
	ActionRelease = "up"
)

const maxNameLen = 10

var (
	errEmptyMessage   = errors.New("empty message")
	errUnknownMessage = errors.New("unknown message type")
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; D is decoded once the type is known
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// Command is a decoded client message. The types below are the full set.
type Command interface {
	command()
}

// InputCmd overrides the facing angle and/or presses or releases the shot
type InputCmd struct {
	Angle  *float64 `json:"angle,omitempty"`
	Action string   `json:"action,omitempty"`
}

// ModeCmd selects the shoot mode (0 auto-rotate, 1 manual)
type ModeCmd struct {
	Mode ShootMode `json:"mode"`
}

// NameCmd sets the sender's display name
type NameCmd struct {
	Name string `json:"name"`
}

// StartCmd starts a manual room
type StartCmd struct{}

// RematchCmd casts a rematch vote
type RematchCmd struct{}

// ParamsCmd live-tunes physics. Absent fields are left unchanged.
type ParamsCmd struct {
	MaxPower     *float64 `json:"maxPower,omitempty"`
	PowerRate    *float64 `json:"powerRate,omitempty"`
	Friction     *float64 `json:"friction,omitempty"`
	RotSpeed     *float64 `json:"rotSpeed,omitempty"`
	Restitution  *float64 `json:"restitution,omitempty"`
	PlayerRadius *float64 `json:"playerRadius,omitempty"`
	BallRadius   *float64 `json:"ballRadius,omitempty"`
}

// AnnounceCmd is a cosmetic audio cue relayed to the whole room
type AnnounceCmd struct {
	Audio string `json:"audio"`
	Text  string `json:"text"`
}

func (InputCmd) command()    {}
func (ModeCmd) command()     {}
func (NameCmd) command()     {}
func (StartCmd) command()    {}
func (RematchCmd) command()  {}
func (ParamsCmd) command()   {}
func (AnnounceCmd) command() {}

// DecodeCommand parses one inbound message (single-pass decode via InEnvelope)
func DecodeCommand(raw []byte) (Command, error) {
	if len(raw) == 0 {
		return nil, errEmptyMessage
	}
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.T {
	case MsgInput:
		return decodePayload[InputCmd](env)
	case MsgMode:
		var m struct {
			Mode *ShootMode `json:"mode"`
		}
		if err := json.Unmarshal(env.D, &m); err != nil {
			return nil, fmt.Errorf("decode mode: %w", err)
		}
		if m.Mode == nil || (*m.Mode != ShootAuto && *m.Mode != ShootManual) {
			return nil, errors.New("mode must be 0 or 1")
		}
		return ModeCmd{Mode: *m.Mode}, nil
	case MsgName:
		return decodePayload[NameCmd](env)
	case MsgStart:
		return StartCmd{}, nil
	case MsgRematch:
		return RematchCmd{}, nil
	case MsgParams:
		return decodePayload[ParamsCmd](env)
	case MsgAnnounce:
		return decodePayload[AnnounceCmd](env)
	}
	return nil, fmt.Errorf("%w: %q", errUnknownMessage, env.T)
}

func decodePayload[T Command](env InEnvelope) (T, error) {
	var out T
	if len(env.D) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	if err := json.Unmarshal(env.D, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", env.T, err)
	}
	return out, nil
}

// SanitizeName keeps letters, digits, space, underscore and hyphen, truncated
func SanitizeName(name string) string {
	out := make([]byte, 0, maxNameLen)
	for i := 0; i < len(name) && len(out) < maxNameLen; i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == ' ', c == '_', c == '-':
			out = append(out, c)
		}
	}
	return string(out)
}

// SnapshotLen is the number of values in a state frame
const SnapshotLen = 37

// Snapshot is the fixed-layout numeric state frame. See Match.Snapshot for the layout.
type Snapshot [SnapshotLen]float64

// EncodeSnapshot serializes a snapshot as a msgpack array for a binary frame
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return msgpack.Marshal(s[:])
}

// DecodeSnapshot is the inverse of EncodeSnapshot
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	var vals []float64
	if err := msgpack.Unmarshal(data, &vals); err != nil {
		return s, err
	}
	if len(vals) != SnapshotLen {
		return s, fmt.Errorf("snapshot has %d values, want %d", len(vals), SnapshotLen)
	}
	copy(s[:], vals)
	return s, nil
}

// LobbyMsg is the seat/name snapshot. Empty seats are null.
type LobbyMsg struct {
	Slots [NumSeats]*string `json:"slots"`
	Names [NumSeats]string  `json:"names"`
}

// AssignMsg tells a new joiner their seat
type AssignMsg struct {
	Slot int `json:"slot"`
	LobbyMsg
}

// StartMsg announces a match start, or syncs a late joiner when MidGame is set
type StartMsg struct {
	LobbyMsg
	MidGame bool    `json:"midGame,omitempty"`
	Scores  *[2]int `json:"scores,omitempty"`
	Phase   string  `json:"phase,omitempty"`
}

// GameOverMsg is the terminal summary
type GameOverMsg struct {
	Winner WinnerInfo `json:"winner"`
	Scores [2]int     `json:"scores"`
}

// WinnerInfo names the winning team and the final goal's scorer
type WinnerInfo struct {
	Team   Team   `json:"team"`
	Scorer string `json:"scorer"`
}

// RematchTallyMsg reports rematch votes against occupied seats
type RematchTallyMsg struct {
	Votes int `json:"votes"`
	Total int `json:"total"`
}

// CountdownMsg reports whole seconds until a quickplay rematch
type CountdownMsg struct {
	Secs int `json:"secs"`
}

// SaveEvent is broadcast when the announcer calls a save
type SaveEvent struct {
	Event     string `json:"event"`
	Saver     string `json:"saver"`
	SaverTeam Team   `json:"saverTeam"`
	Scores    [2]int `json:"scores"`
}

// NearMissEvent is broadcast when the ball rings off a post at the goal mouth
type NearMissEvent struct {
	Event  string `json:"event"`
	Scores [2]int `json:"scores"`
}

// CommentaryEvent carries context for periodic color commentary
type CommentaryEvent struct {
	Event       string           `json:"event"`
	Scores      [2]int           `json:"scores"`
	Names       [NumSeats]string `json:"names"`
	PlayerGoals [NumSeats]int    `json:"playerGoals"`
}

// GoalEvent is broadcast on every goal
type GoalEvent struct {
	Event        string `json:"event"`
	Scorer       string `json:"scorer"`
	ScorerTeam   Team   `json:"scorerTeam"`
	Scores       [2]int `json:"scores"`
	QuickGoal    bool   `json:"quickGoal"`
	IsMatchPoint bool   `json:"isMatchPoint"`
	IsGameOver   bool   `json:"isGameOver"`
}

// GameOverEvent is the announcer bundle sent after GameOverMsg
type GameOverEvent struct {
	Event       string           `json:"event"`
	WinnerTeam  Team             `json:"winnerTeam"`
	Scores      [2]int           `json:"scores"`
	Names       [NumSeats]string `json:"names"`
	PlayerGoals [NumSeats]int    `json:"playerGoals"`
}

// GameStartEvent is the announcer bundle sent with every match start
type GameStartEvent struct {
	Event string            `json:"event"`
	Names [NumSeats]string  `json:"names"`
	Slots [NumSeats]*string `json:"slots"`
}
