package engine

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// ipcResponse is a reply (or, on a shared connection, an event) read from the socket.
type ipcResponse struct {
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
	RequestID int64       `json:"request_id"`
	Event     string      `json:"event"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = time.Second
	queueSize    = 64
)

var requestIDs atomic.Int64

// request is one command waiting for the writer goroutine.
// done, when set, receives the outcome instead of the log callback.
type request struct {
	command []interface{}
	done    func(data interface{}, err error)
}

// enqueue hands a command to the writer without waiting for mpv.
func (m *MPV) enqueue(done func(interface{}, error), command ...interface{}) error {
	select {
	case <-m.closing:
		return fmt.Errorf("mpv closed")
	default:
	}

	select {
	case m.queue <- request{command: command, done: done}:
		return nil
	default:
		return fmt.Errorf("mpv command queue full, dropped %v", command[0])
	}
}

// writeLoop sends queued commands in order until the backend closes.
func (m *MPV) writeLoop() {
	for {
		select {
		case <-m.closing:
			return
		case req := <-m.queue:
			data, err := m.sendCommand(req.command...)
			if req.done != nil {
				req.done(data, err)
			} else if err != nil {
				m.report(err)
			}
		}
	}
}

// sendCommand sends a JSON-IPC command. Only failures to connect are retried:
// once the command is written mpv may have acted on it.
func (m *MPV) sendCommand(command ...interface{}) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := m.exchange(m.socketPath, command)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var connErr *dialError
		if !errors.As(err, &connErr) {
			break
		}
	}

	return nil, fmt.Errorf("ipc command %v failed: %w", command[0], lastErr)
}

// mpvError is a well-formed rejection from mpv; retrying it cannot help.
type mpvError string

func (e mpvError) Error() string {
	return "mpv error: " + string(e)
}

// dialError means nothing reached mpv.
type dialError struct {
	err error
}

func (e *dialError) Error() string {
	return "connect: " + e.err.Error()
}

func (e *dialError) Unwrap() error {
	return e.err
}

// doSendCommand performs one round trip on a fresh connection.
// Broadcast events may arrive before the reply, so lines are read until the request id matches.
func doSendCommand(socketPath string, command []interface{}) (interface{}, error) {
	conn, err := net.Dial(network, socketPath)
	if err != nil {
		return nil, &dialError{err: err}
	}
	defer conn.Close()

	id := requestIDs.Add(1)
	if err := writeCommand(conn, id, command); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}

		if resp.Event != "" || resp.RequestID != id {
			continue
		}

		if resp.Error != "" && resp.Error != "success" {
			return nil, mpvError(resp.Error)
		}

		return resp.Data, nil
	}
}

// writeCommand encodes one newline-delimited command.
func writeCommand(conn net.Conn, id int64, command []interface{}) error {
	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
