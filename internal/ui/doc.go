// Package ui provides the terminal host surface the agent binary wires into
// the presentation queue: modals render as numbered prompts answered on
// stdin, banners as one-line notices.
package ui
