package server

import (
	"encoding/json"
	"net"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/model"
)

const WRITE_WAIT = 2 * time.Second

func (ws *WatcherSession) keepAlive() {
	conn := ws.Conn
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
}

// LoopChannelRead only drains control frames; watchers never send data.
func (ws *WatcherSession) LoopChannelRead(disconnects chan<- int32, closed <-chan struct{}) {
	for {
		messageType, _, err := ws.Conn.NextReader()
		if err != nil {
			log.Debugf("watcher %d read ended: %v", ws.Id, err)
			break
		}
		log.Debugf("watcher %d sent message type %d, ignored", ws.Id, messageType)
	}
	select {
	case disconnects <- ws.Id:
	case <-closed:
	}
}

// LoopChannelWrite consumes MessagesToSend until the game session closes it,
// then says goodbye and releases the HTTP handler.
func (ws *WatcherSession) LoopChannelWrite(disconnects chan<- int32, closed <-chan struct{}) {
	failed := false
	for mes := range ws.MessagesToSend {
		if failed {
			continue
		}
		if err := ws.write(mes); err != nil {
			log.Warnf("watcher %d write failed: %v", ws.Id, err)
			failed = true
			select {
			case disconnects <- ws.Id:
			case <-closed:
			}
		}
	}
	if !failed {
		err := ws.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "race over"),
			time.Now().Add(time.Second))
		if err != nil {
			log.Debugf("watcher %d close message: %v", ws.Id, err)
		}
	}
	close(ws.GameOver)
}

func (ws *WatcherSession) write(mes model.ServerMessage) error {
	if err := ws.Conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT)); err != nil {
		return err
	}
	w, err := ws.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(mes); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	ws.DebugOutMessages++
	return nil
}
