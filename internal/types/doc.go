/*
Package types defines the data structures shared across sttplay.

# Overview

The types package provides shared type definitions for:
  - Playground state (connection status, log entries, socket events)
  - Scripted sessions parsed from .ws and YAML files
  - Transcript history records
  - TLS configuration for the socket dialer

# Playground Types

ConnectionStatus:
  - disconnected, connecting, connected, error
  - Driven only by socket events and explicit connect/disconnect requests

LogEntry:
  - Kind (info, success, error, sent, received)
  - Human readable content
  - Local wall clock timestamp captured at append time

Event:
  - Produced by a socket: open, message, error, close
  - Tagged with the id of the socket that produced it

# Script Types

Script:
  - Endpoint URL, headers and subprotocols
  - Ordered send/receive steps
  - Optional TLS settings

ScriptResult:
  - Sent and received counts
  - Every frame exchanged, in order
  - Duration, error and disconnect reason

# Field Tags

Script and history types carry JSON and YAML tags so they can be read from
script files and written by the export and `run --output` paths.
*/
package types
