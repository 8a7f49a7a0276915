package api

import (
	"time"

	"github.com/TimeToogo/chain-net/internal/state"
)

// statusDTO is the JSON shape for GET/POST /api/status.
type statusDTO struct {
	On bool `json:"on"`
}

// nodeDTO is the JSON shape for one entry in GET /api/nodes.
type nodeDTO struct {
	Name    string    `json:"name"`
	IP      string    `json:"ip"`
	MAC     *string   `json:"mac"`
	Created time.Time `json:"created"`
	You     bool      `json:"you"`
}

// newNodeDTO is the JSON body for POST /api/nodes.
type newNodeDTO struct {
	Name string `json:"name"`
}

// reorderDTO is the JSON body for PUT /api/nodes.
type reorderDTO struct {
	CurI int `json:"cur_i"`
	NewI int `json:"new_i"`
}

func toNodeDTO(p state.Participant, you bool) nodeDTO {
	var mac *string
	if len(p.MAC) > 0 {
		s := p.MAC.String()
		mac = &s
	}
	return nodeDTO{
		Name:    p.Name,
		IP:      p.IP.String(),
		MAC:     mac,
		Created: p.Created,
		You:     you,
	}
}
