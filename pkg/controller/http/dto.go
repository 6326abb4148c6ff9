package http

import (
	"time"

	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/domain/types"
)

type supplyJSON struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Ordered  bool    `json:"ordered"`
}

type messageJSON struct {
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Photos    []string  `json:"photos"`
	Timestamp time.Time `json:"timestamp"`
}

type historyJSON struct {
	Status  string    `json:"status"`
	Comment string    `json:"comment"`
	ByID    string    `json:"byId"`
	ByName  string    `json:"byName"`
	Date    time.Time `json:"date"`
}

type interventionJSON struct {
	ID               string        `json:"id"`
	EstablishmentID  string        `json:"establishmentId"`
	Rooms            []string      `json:"rooms"`
	RoomType         string        `json:"roomType"`
	MissionType      string        `json:"missionType"`
	InterventionType string        `json:"interventionType"`
	Status           string        `json:"status"`
	Closed           bool          `json:"closed"`
	Priority         string        `json:"priority"`
	AssignedTo       string        `json:"assignedTo,omitempty"`
	MissionSummary   string        `json:"missionSummary"`
	MissionComment   string        `json:"missionComment"`
	TechComment      string        `json:"techComment"`
	SuppliesNeeded   []supplyJSON  `json:"suppliesNeeded"`
	Messages         []messageJSON `json:"messages"`
	History          []historyJSON `json:"history"`
	CreatedAt        time.Time     `json:"createdAt"`
	CreatedBy        string        `json:"createdBy"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	UpdatedBy        string        `json:"updatedBy"`
	Version          int64         `json:"version"`
	BlockedRooms     []string      `json:"blockedRooms,omitempty"`
}

type roomBlockJSON struct {
	Room          string     `json:"room"`
	Blocked       bool       `json:"blocked"`
	Reason        string     `json:"reason,omitempty"`
	BlockedBy     string     `json:"blockedBy,omitempty"`
	BlockedByName string     `json:"blockedByName,omitempty"`
	BlockedAt     *time.Time `json:"blockedAt,omitempty"`
	UnblockedAt   *time.Time `json:"unblockedAt,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Version       int64      `json:"version"`
}

type notificationJSON struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId,omitempty"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Read           bool      `json:"read"`
	Room           string    `json:"room,omitempty"`
	InterventionID string    `json:"interventionId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type changeEventJSON struct {
	Collection   string            `json:"collection"`
	Kind         string            `json:"kind"`
	DocumentID   string            `json:"documentId"`
	Intervention *interventionJSON `json:"intervention,omitempty"`
	RoomBlock    *roomBlockJSON    `json:"roomBlock,omitempty"`
	OccurredAt   time.Time         `json:"occurredAt"`
}

func roomStrings(rooms []types.RoomID) []string {
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = string(r)
	}
	return out
}

func toInterventionJSON(x *model.Intervention) *interventionJSON {
	out := &interventionJSON{
		ID:               string(x.ID),
		EstablishmentID:  x.EstablishmentID,
		Rooms:            roomStrings(x.Rooms),
		RoomType:         x.RoomType.String(),
		MissionType:      x.MissionType,
		InterventionType: x.InterventionType,
		Status:           x.Status.String(),
		Closed:           x.Status.IsClosed(),
		Priority:         x.Priority.String(),
		AssignedTo:       x.AssignedTo,
		MissionSummary:   x.MissionSummary,
		MissionComment:   x.MissionComment,
		TechComment:      x.TechComment,
		SuppliesNeeded:   make([]supplyJSON, len(x.SuppliesNeeded)),
		Messages:         make([]messageJSON, len(x.Messages)),
		History:          make([]historyJSON, len(x.History)),
		CreatedAt:        x.CreatedAt,
		CreatedBy:        x.CreatedBy,
		UpdatedAt:        x.UpdatedAt,
		UpdatedBy:        x.UpdatedBy,
		Version:          x.Version,
	}
	for i, s := range x.SuppliesNeeded {
		out.SuppliesNeeded[i] = supplyJSON(s)
	}
	for i, m := range x.Messages {
		out.Messages[i] = messageJSON(m)
	}
	for i, h := range x.History {
		out.History[i] = historyJSON{
			Status:  h.Status.String(),
			Comment: h.Comment,
			ByID:    h.ByID,
			ByName:  h.ByName,
			Date:    h.Date,
		}
	}
	return out
}

func toInterventionViewJSON(v *model.InterventionView) *interventionJSON {
	out := toInterventionJSON(v.Intervention)
	out.BlockedRooms = roomStrings(v.BlockedRooms)
	return out
}

func toRoomBlockJSON(b *model.RoomBlock) *roomBlockJSON {
	return &roomBlockJSON{
		Room:          string(b.Room),
		Blocked:       b.Blocked,
		Reason:        b.Reason,
		BlockedBy:     b.BlockedBy,
		BlockedByName: b.BlockedByName,
		BlockedAt:     b.BlockedAt,
		UnblockedAt:   b.UnblockedAt,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.Version,
	}
}

func toNotificationJSON(n *model.Notification) *notificationJSON {
	return &notificationJSON{
		ID:             string(n.ID),
		UserID:         n.UserID,
		Type:           n.Type.String(),
		Title:          n.Title,
		Message:        n.Message,
		Read:           n.Read,
		Room:           string(n.Room),
		InterventionID: string(n.InterventionID),
		CreatedAt:      n.CreatedAt,
	}
}

func toChangeEventJSON(ev *model.ChangeEvent) *changeEventJSON {
	out := &changeEventJSON{
		Collection: string(ev.Collection),
		Kind:       string(ev.Kind),
		DocumentID: ev.DocumentID,
		OccurredAt: ev.OccurredAt,
	}
	if ev.Intervention != nil {
		out.Intervention = toInterventionJSON(ev.Intervention)
	}
	if ev.RoomBlock != nil {
		out.RoomBlock = toRoomBlockJSON(ev.RoomBlock)
	}
	return out
}
