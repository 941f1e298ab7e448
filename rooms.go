package main

import (
	"regexp"
	"sort"
	"sync"
)

const (
	defaultMaxRooms = 100
	roomCodeLen     = 6
)

var roomIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// ValidRoomID reports whether id can name a room
func ValidRoomID(id string) bool {
	return roomIDRe.MatchString(id)
}

// RoomManager handles creation and lookup of rooms. Rooms exist from their
// first join until their last connection leaves.
type RoomManager struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	maxRooms  int
	analytics *Analytics
}

// NewRoomManager creates a new RoomManager
func NewRoomManager(maxRooms int, analytics *Analytics) *RoomManager {
	if maxRooms <= 0 {
		maxRooms = defaultMaxRooms
	}
	return &RoomManager{
		rooms:     make(map[string]*Room),
		maxRooms:  maxRooms,
		analytics: analytics,
	}
}

// Join adds c to the room with the given id, creating it if needed. Returns
// nil if the room limit is reached. The manager lock is held across the join
// so an emptying room cannot be removed underneath a new arrival.
func (rm *RoomManager) Join(id string, c Conn) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[id]
	if !ok {
		if len(rm.rooms) >= rm.maxRooms {
			return nil
		}
		room = NewRoom(id, rm.analytics)
		rm.rooms[id] = room
	}
	room.Join(c)
	return room
}

// Leave removes a connection from its room and drops the room once nobody is left
func (rm *RoomManager) Leave(room *Room, connID string) {
	room.Leave(connID)

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.rooms[room.ID] == room && room.ConnCount() == 0 {
		delete(rm.rooms, room.ID)
	}
}

// GetRoom returns a room by ID
func (rm *RoomManager) GetRoom(id string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[id]
}

// NewCode returns a private room code not used by any live room
func (rm *RoomManager) NewCode() string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	for {
		code := GenerateRoomCode(roomCodeLen)
		if _, exists := rm.rooms[code]; !exists {
			return code
		}
	}
}

// RoomInfo is one entry of the room list
type RoomInfo struct {
	ID        string `json:"id"`
	Players   int    `json:"players"`
	Phase     string `json:"phase"`
	Quickplay bool   `json:"quickplay"`
}

// ListRooms returns info about all active rooms, sorted by id
func (rm *RoomManager) ListRooms() []RoomInfo {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	list := make([]RoomInfo, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		list = append(list, room.Info())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Count returns the number of live rooms
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
