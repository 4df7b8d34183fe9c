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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpSign, "soft", StatusSuccess))
	RecordOperation(OpSign, "soft", true)
	after := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpSign, "soft", StatusSuccess))
	assert.Equal(t, before+1, after)

	beforeErr := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpSign, "soft", StatusError))
	RecordOperation(OpSign, "soft", false)
	afterErr := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpSign, "soft", StatusError))
	assert.Equal(t, beforeErr+1, afterErr)
}

func TestRecordError(t *testing.T) {
	before := testutil.ToFloat64(ErrorsTotal.WithLabelValues(OpFind, "not_found"))
	RecordError(OpFind, "not_found")
	after := testutil.ToFloat64(ErrorsTotal.WithLabelValues(OpFind, "not_found"))
	assert.Equal(t, before+1, after)
}

func TestRecordPresencePrompt(t *testing.T) {
	before := testutil.ToFloat64(PresencePromptsTotal.WithLabelValues(PresenceCanceled))
	RecordPresencePrompt(PresenceCanceled)
	after := testutil.ToFloat64(PresencePromptsTotal.WithLabelValues(PresenceCanceled))
	assert.Equal(t, before+1, after)
}

func TestTimer(t *testing.T) {
	// Timer must observe exactly one sample on completion
	done := Timer(OpVerify, "soft")
	done()

	count := testutil.CollectAndCount(OperationDuration)
	assert.Greater(t, count, 0)
}

func TestHandler(t *testing.T) {
	assert.NotNil(t, Handler())
}
