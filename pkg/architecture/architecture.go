// Package architecture declares the built-in system architecture diagram.
//
// The diagram shows the video call platform: a WebAssembly frontend talking
// HTTP/JSON to a REST backend and QUIC/WebTransport to a media backend, with
// PostgreSQL, NATS and an SMTP relay behind them.
package architecture

import (
	"errors"

	"github.com/matzehuels/archdiagram/pkg/diagram"
	"github.com/matzehuels/archdiagram/pkg/diagram/icon"
)

// Title is the diagram title. The rendered file is named after it.
const Title = "Architecture"

// Image paths of the custom icons, relative to the working directory.
const (
	FrontendIcon = "./rust-yew-wasm.png"
	QUICIcon     = "./quic.png"
	NATSIcon     = "./nats.png"
)

// Edge colours used in the diagram.
const (
	colorEmail = "red"
	colorHTTP  = "orange"
	colorMedia = "darkgreen"
)

// Diagram builds a fresh copy of the architecture diagram.
// The returned diagram is independent of previous calls and has been validated.
func Diagram() (*diagram.Diagram, error) {
	d := diagram.New(Title)

	fe := d.NewCluster("Frontend").
		NewNode("WASM Frontend", icon.Custom(FrontendIcon))

	smtp := d.NewCluster("External services").
		NewNode("SMTP server", icon.Server)

	backend := d.NewCluster("Backend")
	rest := backend.NewNode("REST Service", icon.EC2)
	quic := backend.NewNode("QUIC Service", icon.Custom(QUICIcon))

	data := d.NewCluster("Data Management")
	db := data.NewNode("PostgreSQL", icon.PostgreSQL)
	nats := data.NewNode("NATS Server", icon.Custom(NATSIcon))

	err := errors.Join(
		d.Connect(rest, smtp, diagram.Edge{Color: colorEmail, Label: "Registration email", Style: diagram.StyleDotted}),
		d.Connect(fe, rest, diagram.Edge{Color: colorHTTP, Label: "HTTP/JSON"}),
		d.Connect(rest, db, diagram.Edge{Color: colorHTTP, Label: "SQLX query"}),
		d.ConnectBoth(fe, quic, diagram.Edge{Color: colorMedia, Label: "QUIC/WebTransport"}),
		d.Connect(nats, quic, diagram.Edge{Color: colorMedia, Label: "Protocol buffer"}),
		d.Connect(quic, nats, diagram.Edge{Color: colorMedia, Label: "Media packets"}),
	)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
