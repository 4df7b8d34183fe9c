// Copyright (c) 2026 Leafn Labs
//
// This file is part of go-secure-enclave.
//
// go-secure-enclave is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@leafn.dev for commercial licensing options.

package cli

import (
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"

	"github.com/leafn/go-secure-enclave/pkg/types"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// handleFields flattens a handle for JSON output
func handleFields(h *types.KeyHandle) map[string]interface{} {
	return map[string]interface{}{
		"id":        h.ID,
		"class":     h.Class.String(),
		"label":     h.Label,
		"algorithm": h.Algorithm.String(),
		"bits":      h.Bits,
		"tier":      h.Tier.String(),
	}
}

// PrintHandle prints a single key handle
func (p *Printer) PrintHandle(h *types.KeyHandle) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(handleFields(h))
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Label:     %s\n", h.Label)
		fmt.Fprintf(p.writer, "Class:     %s\n", h.Class)
		fmt.Fprintf(p.writer, "Algorithm: %s-%d\n", h.Algorithm, h.Bits)
		fmt.Fprintf(p.writer, "Tier:      %s\n", h.Tier)
		fmt.Fprintf(p.writer, "ID:        %s\n", h.ID)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyPair prints the handles of a freshly generated pair
func (p *Printer) PrintKeyPair(pub, priv *types.KeyHandle) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"public":  handleFields(pub),
			"private": handleFields(priv),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Generated %s-%d key pair (%s)\n", priv.Algorithm, priv.Bits, priv.Tier)
		fmt.Fprintf(p.writer, "  public:  %s\n", pub.Label)
		fmt.Fprintf(p.writer, "  private: %s\n", priv.Label)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintPublicKey prints a public key handle with its SPKI DER bytes.
// Text output renders the key as a PEM block.
func (p *Printer) PrintPublicKey(h *types.KeyHandle, der []byte) error {
	switch p.format {
	case OutputFormatJSON:
		fields := handleFields(h)
		if len(der) > 0 {
			fields["public_key"] = base64.StdEncoding.EncodeToString(der)
		}
		return p.printJSON(fields)
	case OutputFormatText:
		if err := p.PrintHandle(h); err != nil {
			return err
		}
		if len(der) > 0 {
			return pem.Encode(p.writer, &pem.Block{Type: "PUBLIC KEY", Bytes: der})
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSignature prints a signature (base64 encoded)
func (p *Printer) PrintSignature(signature []byte) error {
	encoded := base64.StdEncoding.EncodeToString(signature)
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"signature": encoded,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, encoded)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVerifyResult prints the outcome of a verification
func (p *Printer) PrintVerifyResult(valid bool) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"valid": valid,
		})
	case OutputFormatText:
		if valid {
			fmt.Fprintln(p.writer, "Signature valid")
		} else {
			fmt.Fprintln(p.writer, "Signature INVALID")
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintCapabilities prints element capabilities
func (p *Printer) PrintCapabilities(elementType string, caps types.Capabilities) error {
	switch p.format {
	case OutputFormatJSON:
		schemes := make([]string, len(caps.Schemes))
		for i, s := range caps.Schemes {
			schemes[i] = s.String()
		}
		return p.printJSON(map[string]interface{}{
			"element": elementType,
			"capabilities": map[string]interface{}{
				"hardware_backed":     caps.HardwareBacked,
				"presence_gating":     caps.PresenceGating,
				"device_state_gating": caps.DeviceStateGating,
				"schemes":             schemes,
			},
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Element: %s\n", elementType)
		fmt.Fprintf(p.writer, "  Hardware backed:     %v\n", caps.HardwareBacked)
		fmt.Fprintf(p.writer, "  Presence gating:     %v\n", caps.PresenceGating)
		fmt.Fprintf(p.writer, "  Device state gating: %v\n", caps.DeviceStateGating)
		fmt.Fprintln(p.writer, "  Signature schemes:")
		for _, s := range caps.Schemes {
			fmt.Fprintf(p.writer, "    - %s\n", s)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON marshals data as indented JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
