package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

type API struct {
	Rooms core.RoomFactory
}

// CreateRoom mints an empty room and remembers it in the browser
// session so the home page can offer a rejoin.
func (a *API) CreateRoom(c *gin.Context) {
	room := a.Rooms.CreateRoom()
	id := string(room.Room().ID)

	sess := sessions.Default(c)
	sess.Set("last_room", id)
	if err := sess.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}

	c.JSON(http.StatusOK, gin.H{"roomId": id})
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, a.Rooms.List())
}

// RecentRoom returns the last room this browser created, if it still exists.
func (a *API) RecentRoom(c *gin.Context) {
	sess := sessions.Default(c)
	id, ok := sess.Get("last_room").(string)
	if !ok || id == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recent room"})
		return
	}
	if _, ok := a.Rooms.GetRoom(domain.RoomID(id)); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": id})
}
