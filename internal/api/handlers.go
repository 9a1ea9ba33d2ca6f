package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/npezzotti/go-chat-relay/internal/relay"
	"github.com/npezzotti/go-chat-relay/internal/types"
	"github.com/teris-io/shortid"
)

// maxUploadSize bounds image uploads; the relay core only ever sees the
// returned reference.
const maxUploadSize = 10 << 20

var allowedImageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

func (s *RelayApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *RelayApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	id, err := shortid.Generate()
	if err != nil {
		s.log.Println("error generating connection id:", err)
		conn.Close()
		return
	}

	client := relay.NewClient(id, conn, s.rs, s.log)

	s.rs.RegisterClient(client)
	go client.Write()
	go client.Read()
}

func (s *RelayApp) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(allowedImageExts, ext) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, map[string]string{"image": name})
}

func (s *RelayApp) getMessages(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	limit := s.historyLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		limit = n
	}

	messages, err := s.db.MessagesByRoom(r.Context(), room, limit)
	if err != nil {
		s.log.Println("MessagesByRoom:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var roomMessages = make([]types.Message, 0, len(messages))
	for _, msg := range messages {
		roomMessages = append(roomMessages, types.Message{
			Id:        msg.Id,
			Room:      msg.Room,
			Author:    msg.Author,
			Text:      msg.Text,
			Image:     msg.Image,
			Timestamp: msg.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, roomMessages)
}
