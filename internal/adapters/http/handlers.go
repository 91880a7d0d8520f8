package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Coedit/internal/adapters/auth"
	"github.com/dkeye/Coedit/internal/adapters/rtc"
	"github.com/dkeye/Coedit/internal/app/orch"
	"github.com/dkeye/Coedit/internal/config"
	"github.com/dkeye/Coedit/internal/core"
	"github.com/dkeye/Coedit/internal/domain"
)

type documentsHandler struct {
	store core.DocumentStore
}

// get answers {"document": <state>} with null for an unknown document.
func (h documentsHandler) get(c *gin.Context) {
	id := c.Param("id")
	if err := domain.ValidateDocumentID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, found, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("doc", id).Msg("load document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	var doc json.RawMessage
	if found {
		doc = json.RawMessage(data)
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// list answers {"documents": [ids...]} for stores that can enumerate.
func (h documentsHandler) list(c *gin.Context) {
	lister, ok := h.store.(core.DocumentLister)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "store cannot list documents"})
		return
	}
	ids, err := lister.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list documents")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": ids})
}

func (h documentsHandler) put(c *gin.Context) {
	id := c.Param("id")
	if err := domain.ValidateDocumentID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req struct {
		Doc json.RawMessage `json:"doc"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Doc) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing doc"})
		return
	}
	if err := h.store.Put(c.Request.Context(), id, string(req.Doc)); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("doc", id).Msg("save document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("doc", id).Str("user", CurrentIdentity(c).Handle).Msg("document saved")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type roomsHandler struct {
	relays []*orch.Orchestrator
}

// list answers {"rooms": {"<mode>": [...]}}, optionally filtered by ?mode=.
func (h roomsHandler) list(c *gin.Context) {
	want := c.Query("mode")
	out := make(map[domain.Mode][]core.RoomInfo, len(h.relays))
	for _, relay := range h.relays {
		if want != "" && string(relay.Mode()) != want {
			continue
		}
		out[relay.Mode()] = relay.Rooms.List()
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

// evict removes every member from a room without closing their connections.
// In collab mode members still in the room hear peer:left for each removal.
func (h roomsHandler) evict(c *gin.Context) {
	mode := c.Param("mode")
	for _, relay := range h.relays {
		if string(relay.Mode()) != mode {
			continue
		}
		room := domain.RoomID(c.Param("id"))
		n := relay.EvictRoom(room)
		log.Info().Str("module", "adapters.http").Str("mode", mode).Str("room", string(room)).Int("evicted", n).Str("user", CurrentIdentity(c).Handle).Msg("room evicted")
		c.JSON(http.StatusOK, gin.H{"evicted": n})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown mode"})
}

func iceHandler(cfg *config.Config) gin.HandlerFunc {
	servers := rtc.ClientICEServers(cfg.ICEServers)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": servers})
	}
}

// devLogin trusts the posted email. Only mounted when auth.dev_login is set.
func devLogin(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	id, err := domain.NewIdentity(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := sessions.Default(c)
	s.Set(auth.IdentityKey, id.Handle)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id.Handle})
}

func logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	_ = s.Save()
	c.Status(http.StatusNoContent)
}
