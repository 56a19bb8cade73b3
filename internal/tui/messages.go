package tui

import (
	"github.com/Veraticus/upi-triage/internal/diagnosis"
	"github.com/Veraticus/upi-triage/internal/permission"
	"github.com/Veraticus/upi-triage/internal/store"
)

type transactionsLoadedMsg struct {
	result store.Result
}

type sessionLoadedMsg struct {
	session permission.Session
}

type diagnosisResultMsg struct {
	result diagnosis.Result
}

type stageTickMsg struct {
	generation uint64
}

type exportedMsg struct {
	err   error
	path  string
	count int
}

type copiedMsg struct {
	err error
}

type toastExpiredMsg struct {
	id int
}
