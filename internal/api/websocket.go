package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/broadcaster"
	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/ranking"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Subscribers connect from arbitrary frontends
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundMessage is the only client-to-server frame the socket accepts.
type inboundMessage struct {
	Type string `json:"type"`
}

const inboundRequestRefresh = "request_refresh"

// leaderboardRow is one entry of a full_refresh payload.
type leaderboardRow struct {
	Rank     int    `json:"rank"`
	Address  string `json:"address"`
	DnaScore int    `json:"dnaScore"`
	Tier     string `json:"tier"`
}

// WebsocketHandler upgrades the request and registers the connection with
// the broadcaster. The read loop only exists to detect disconnects and to
// answer refresh requests; everything else a client sends is ignored.
func (s *Server) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	conn := broadcaster.NewWebsocketConn(wsConn)
	s.broadcaster.Register(conn)
	log.Ctx(r.Context()).Debug().
		Str("connId", conn.ID()).
		Int("subscribers", s.broadcaster.Len()).
		Msg("Subscriber connected")

	go s.readLoop(wsConn, conn)
}

func (s *Server) readLoop(wsConn *websocket.Conn, conn broadcaster.Conn) {
	defer func() {
		s.broadcaster.Unregister(conn.ID())
		_ = conn.Close()
		log.Debug().Str("connId", conn.ID()).Msg("Subscriber disconnected")
	}()

	for {
		_, payload, err := wsConn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debug().
				Str("connId", conn.ID()).
				Msg("Ignoring malformed subscriber frame")
			continue
		}

		if msg.Type == inboundRequestRefresh {
			s.sendFullRefresh(conn.ID())
		}
	}
}

// sendFullRefresh answers one subscriber's refresh request with the current
// top of the leaderboard. Only the requester receives the frame.
func (s *Server) sendFullRefresh(connID string) {
	top := s.tracker.Top(ranking.TopN)
	rows := make([]leaderboardRow, 0, len(top))
	for _, user := range top {
		rows = append(rows, leaderboardRow{
			Rank:     user.Rank,
			Address:  user.Address,
			DnaScore: user.Score,
			Tier:     user.Tier.String(),
		})
	}

	data, err := json.Marshal(rows)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal leaderboard snapshot")
		return
	}

	msg := broadcaster.NewLeaderboardUpdateMessage(
		broadcaster.UpdateTypeFullRefresh,
		data,
		time.Now().UnixMilli(),
	)
	if err := s.broadcaster.SendTo(connID, msg); err != nil {
		log.Debug().Err(err).Str("connId", connID).Msg("Failed to send full refresh")
	}
}
