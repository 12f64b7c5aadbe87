package service

import (
	"sync"

	"github.com/ce-fello/festival-teams-service/src/internal/model"
)

// Collection is the one shared set of teams. Entries are only ever replaced
// by id with a record the store returned, so unrelated teams are never
// affected by another team's update.
type Collection struct {
	mu    sync.RWMutex
	teams map[string]model.Team
	order map[string][]string
}

func NewCollection() *Collection {
	return &Collection{
		teams: make(map[string]model.Team),
		order: make(map[string][]string),
	}
}

// List returns the teams of an event in store order. ok is false when the
// event was never loaded.
func (c *Collection) List(eventID string) ([]model.Team, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids, ok := c.order[eventID]
	out := make([]model.Team, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Clone(c.teams[id]))
	}
	return out, ok
}

func (c *Collection) Get(teamID string) (model.Team, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.teams[teamID]
	if !ok {
		return model.Team{}, false
	}
	return model.Clone(t), true
}

// Apply stores t under its id. A team new to its event is appended.
func (c *Collection) Apply(t model.Team) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.teams[t.ID]; !ok {
		c.order[t.EventID] = append(c.order[t.EventID], t.ID)
	}
	c.teams[t.ID] = model.Clone(t)
}

func (c *Collection) Remove(teamID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.teams[teamID]
	if !ok {
		return
	}
	delete(c.teams, teamID)
	ids := c.order[t.EventID]
	for i, id := range ids {
		if id == teamID {
			c.order[t.EventID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
}

// Replace swaps the whole event with a fresh store listing.
func (c *Collection) Replace(eventID string, teams []model.Team) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.order[eventID] {
		delete(c.teams, id)
	}
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		c.teams[t.ID] = model.Clone(t)
		ids = append(ids, t.ID)
	}
	c.order[eventID] = ids
}
