// Package remote mirrors an application's live tree to browsers over
// WebSocket.
//
// The application renders into a dom.Memory wrapped by a dom.Recorder. On
// connect a browser receives a snapshot of the tree; afterwards every
// flushed batch of mutations is broadcast as an ops frame. The browser
// replays the ops on its own DOM and reports events back, which are fired
// on the Memory document from the application's loop goroutine.
//
// Frames are JSON text messages:
//
//	server → client  {"type":"snapshot","seq":3,"root":{...}}
//	server → client  {"type":"ops","seq":4,"ops":[{"op":"set_text","node":7,"value":"2"}]}
//	client → server  {"type":"event","node":5,"event":"click"}
//
// Sequence numbers count broadcast batches. A snapshot carries the number
// of the last batch it already contains.
package remote
