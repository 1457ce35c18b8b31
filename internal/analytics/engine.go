package analytics

import (
	"github.com/limasantoss/marketplace-dash/internal/models"
)

// Request is the full context of one question. Period is the window the
// caller selected; when zero, comparisons use the span of Current.
type Request struct {
	Question string
	Period   models.Period
	Current  RecordSet
	History  RecordSet
}

// Response carries the formatted answer and the intent that produced it
type Response struct {
	Intent      Intent
	Text        string
	EmptyPeriod bool
}

// Engine answers questions over record sets. It holds no state and is safe
// for concurrent use.
type Engine struct{}

// NewEngine creates a new query engine
func NewEngine() *Engine {
	return &Engine{}
}

// Answer classifies the question and runs the matching recipe.
// An empty current slice still resolves the intent but always yields MsgNoData.
func (e *Engine) Answer(req Request) Response {
	intent := Match(req.Question)
	if req.Current.Empty() {
		return Response{Intent: intent, Text: MsgNoData, EmptyPeriod: true}
	}
	run, ok := recipes[intent]
	if !ok {
		run = recipes[IntentFallback]
	}
	return Response{
		Intent: intent,
		Text:   run(input{current: req.Current, history: req.History, period: req.Period}),
	}
}

// Answer is the plain string form of Engine.Answer
func Answer(question string, current, history RecordSet) string {
	return NewEngine().Answer(Request{Question: question, Current: current, History: history}).Text
}
