// Package view models the client navigation as an explicit state
// machine: one base surface per installation plus two independent
// player overlays drawn above it. Overlays never disturb the base
// state; closing one returns to whatever was underneath.
package view

import (
	"fmt"
	"sync"
)

type BaseState string

const (
	Home     BaseState = "home"
	Trend    BaseState = "trend"
	Likes    BaseState = "likes"
	Saved    BaseState = "saved"
	Hidden   BaseState = "hidden"
	Privacy  BaseState = "privacy"
	Admin    BaseState = "admin"
	Category BaseState = "category"
	Offline  BaseState = "offline"
)

var validStates = map[BaseState]bool{
	Home: true, Trend: true, Likes: true, Saved: true, Hidden: true,
	Privacy: true, Admin: true, Category: true, Offline: true,
}

type OverlayKind string

const (
	ShortPlayer OverlayKind = "short_player"
	LongPlayer  OverlayKind = "long_player"
)

// Overlay is an active full-screen player.
type Overlay struct {
	Kind    OverlayKind `json:"kind"`
	VideoID string      `json:"video_id"`
}

// Session is one installation's navigation state.
type Session struct {
	Base           BaseState `json:"base"`
	ActiveCategory string    `json:"active_category,omitempty"`
	ShortOverlay   *Overlay  `json:"short_overlay,omitempty"`
	LongOverlay    *Overlay  `json:"long_overlay,omitempty"`
}

// Controller holds sessions for every connected installation.
type Controller struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewController() *Controller {
	return &Controller{sessions: make(map[string]*Session)}
}

// Session returns the installation's current state, creating a fresh
// one at Home. When the client reports the network down at startup it
// calls StartOffline instead.
func (c *Controller) Session(installID string) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.session(installID)
}

func (c *Controller) session(installID string) *Session {
	s, ok := c.sessions[installID]
	if !ok {
		s = &Session{Base: Home}
		c.sessions[installID] = s
	}
	return s
}

// StartOffline moves a freshly created session straight to the offline
// vault, the automatic startup transition for a network-less launch.
func (c *Controller) StartOffline(installID string) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session(installID)
	s.Base = Offline
	return *s
}

// Navigate switches the base surface. Entering Category requires a
// category value; it is cleared when leaving.
func (c *Controller) Navigate(installID string, to BaseState, category string) (Session, error) {
	if !validStates[to] {
		return Session{}, fmt.Errorf("unknown view %q", to)
	}
	if to == Category && category == "" {
		return Session{}, fmt.Errorf("category view requires a category")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session(installID)
	s.Base = to
	if to == Category {
		s.ActiveCategory = category
	} else {
		s.ActiveCategory = ""
	}
	return *s, nil
}

// OpenOverlay activates a player above the current base state. Both
// overlay kinds may be active at once with any base state.
func (c *Controller) OpenOverlay(installID string, kind OverlayKind, videoID string) (Session, error) {
	if kind != ShortPlayer && kind != LongPlayer {
		return Session{}, fmt.Errorf("unknown overlay %q", kind)
	}
	if videoID == "" {
		return Session{}, fmt.Errorf("overlay requires a video id")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session(installID)
	ov := &Overlay{Kind: kind, VideoID: videoID}
	if kind == ShortPlayer {
		s.ShortOverlay = ov
	} else {
		s.LongOverlay = ov
	}
	return *s, nil
}

// CloseOverlay dismisses one player, leaving the base state untouched.
func (c *Controller) CloseOverlay(installID string, kind OverlayKind) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session(installID)
	if kind == ShortPlayer {
		s.ShortOverlay = nil
	} else if kind == LongPlayer {
		s.LongOverlay = nil
	}
	return *s
}

// CloseOverlays dismisses both players; a disliked video is leaving
// the feed, so any overlay showing it must go.
func (c *Controller) CloseOverlays(installID string) Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session(installID)
	s.ShortOverlay = nil
	s.LongOverlay = nil
	return *s
}
