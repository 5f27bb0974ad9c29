package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kira8ke/GloHub/internal/game"
)

type createGameRequest struct {
	AdminID string `json:"admin_id" binding:"required,max=64"`
	Name    string `json:"name" binding:"omitempty,gamename"`
}

type joinRequest struct {
	PlayerName string `json:"player_name" binding:"required,name"`
	AvatarID   string `json:"avatar_id" binding:"max=64"`
}

type adminRequest struct {
	AdminID string `json:"admin_id" form:"admin_id" binding:"required,max=64"`
}

type readyRequest struct {
	GameCode string `json:"game_code" binding:"required,joincode"`
}

type actionRequest struct {
	GameCode string `json:"game_code" binding:"required,joincode"`
	Action   string `json:"action" binding:"required,action"`
}

// viewerQuery names who is looking. Without viewer_id or observer=true the
// caller is anonymous and never sees the word.
type viewerQuery struct {
	ViewerID string `form:"viewer_id" binding:"max=64"`
	Observer bool   `form:"observer"`
}

func (q viewerQuery) viewer() string {
	if q.ViewerID == "" && q.Observer {
		return game.Observer
	}
	return q.ViewerID
}

type eventView struct {
	ID        uint              `json:"id"`
	Type      string            `json:"type"`
	RoundID   string            `json:"round_id,omitempty"`
	PlayerID  string            `json:"player_id,omitempty"`
	Payload   game.EventPayload `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

var (
	adminMessages = bindMessages{
		"AdminID": {"required": "admin_id is required", "max": "admin_id is too long"},
	}
	createMessages = bindMessages{
		"AdminID": {"required": "admin_id is required", "max": "admin_id is too long"},
		"Name":    {"gamename": "game name must be 60 simple characters or fewer"},
	}
	joinMessages = bindMessages{
		"PlayerName": {
			"required": "player_name is required",
			"name":     "player_name must be 1-20 letters, digits or simple punctuation",
		},
		"AvatarID": {"max": "avatar_id is too long"},
	}
	playerMessages = bindMessages{
		"GameCode": {"required": "game_code is required", "joincode": "game_code must be 6 characters"},
		"Action":   {"required": "action is required", "action": "action must be correct or wrong"},
	}
)

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if !bindJSON(c, &req, createMessages, "invalid game request") {
		return
	}
	name, _ := validateGameName(req.Name)
	created, err := s.coord.Create(c.Request.Context(), req.AdminID, name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"game_id":   created.ID,
		"game_code": created.Code,
		"name":      created.Name,
	})
}

func (s *Server) handleJoin(c *gin.Context) {
	var req joinRequest
	if !bindJSON(c, &req, joinMessages, "invalid join request") {
		return
	}
	name, _ := validateName(req.PlayerName)
	player, err := s.coord.Join(c.Request.Context(), c.Param("code"), name, req.AvatarID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"player_id":   player.ID,
		"player_name": player.Name,
		"game_code":   game.NormalizeCode(c.Param("code")),
	})
}

func (s *Server) handleStart(c *gin.Context) {
	var req adminRequest
	if !bindJSON(c, &req, adminMessages, "") {
		return
	}
	if err := s.coord.Start(c.Request.Context(), c.Param("code"), req.AdminID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleSpin(c *gin.Context) {
	var req adminRequest
	if !bindJSON(c, &req, adminMessages, "") {
		return
	}
	result, err := s.coord.Spin(c.Request.Context(), c.Param("code"), req.AdminID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRoundEnd(c *gin.Context) {
	var req adminRequest
	if !bindJSON(c, &req, adminMessages, "") {
		return
	}
	allPlayed, err := s.coord.RoundEnd(c.Request.Context(), c.Param("code"), req.AdminID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"all_played": allPlayed})
}

func (s *Server) handleDeleteGame(c *gin.Context) {
	var req adminRequest
	if !bindQuery(c, &req, adminMessages, "") {
		return
	}
	if err := s.coord.Delete(c.Request.Context(), c.Param("code"), req.AdminID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePreparationReady(c *gin.Context) {
	var req readyRequest
	if !bindJSON(c, &req, playerMessages, "") {
		return
	}
	playerID, err := validateID("player id", c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	duration, err := s.coord.PreparationReady(c.Request.Context(), req.GameCode, playerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timer_duration": int(duration.Round(time.Second) / time.Second)})
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if !bindJSON(c, &req, playerMessages, "") {
		return
	}
	playerID, err := validateID("player id", c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action, _ := game.ParseAction(req.Action)
	result, err := s.coord.SubmitAction(c.Request.Context(), req.GameCode, playerID, action)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleState(c *gin.Context) {
	var query viewerQuery
	if !bindQuery(c, &query, nil, "") {
		return
	}
	snap, err := s.coord.State(c.Request.Context(), c.Param("code"), query.viewer())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleFinalResults(c *gin.Context) {
	results, err := s.coord.FinalResults(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// handleWord serves the actor's word to other players' screens. The path
// names the actor; the query names who is asking.
func (s *Server) handleWord(c *gin.Context) {
	var query viewerQuery
	if !bindQuery(c, &query, nil, "") {
		return
	}
	word, err := s.coord.WordFor(c.Request.Context(), c.Param("code"), c.Param("playerId"), query.viewer())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"word": word})
}

func (s *Server) handleEvents(c *gin.Context) {
	events, err := s.coord.Events(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]eventView, 0, len(events))
	for _, event := range events {
		views = append(views, eventView{
			ID:        event.ID,
			Type:      event.Type,
			RoundID:   event.RoundID,
			PlayerID:  event.PlayerID,
			Payload:   event.Payload,
			CreatedAt: event.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": views})
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
		return
	}
	if err := s.db.Ping(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("health check: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}
