package render

import (
	"github.com/m3rciful/vocabot/core/telegram/format"
	"github.com/m3rciful/vocabot/internal/entry"
)

var syntaxHint = format.Bold(entry.Syntax)

// EmptyHint is shown instead of an empty list.
var EmptyHint = "Nothing here yet.\nAdd words like this:\n" + syntaxHint

// Home is the greeting shown with the home menu.
var Home = "Hi! I am your personal dictionary.\n\n" +
	"Add words like this:\n" + syntaxHint + "\n\n" +
	"Commands:\n" +
	"/list — list with A–Z buttons\n" +
	"/letter A — words starting with a letter\n" +
	"/find apple — search\n" +
	"/delete apple — delete a word\n" +
	"/bulk — add many words at once\n" +
	"/edit — edit a word\n" +
	"/quiz — flashcards\n" +
	"/cancel — stop the current action"

// Unparsed answers a line the entry parser rejected.
var Unparsed = "Could not understand that.\nTry:\n" + syntaxHint

// Prompts for flows waiting on text.
var (
	PromptBulk   = "Send several lines, one word per line:\n" + syntaxHint
	PromptDelete = "Which word should I delete? Send it as text."
	PromptEdit   = "Which word do you want to edit? Send part of it."
	PromptFind   = "What should I look for? Send the query."
)

// Fixed replies.
const (
	LettersTitle   = "Pick a letter:"
	EmptyQuiz      = "The dictionary is empty. Add a couple of words first."
	Cancelled      = "Cancelled."
	NothingToStop  = "Nothing to cancel."
	ButtonExpired  = "This button has expired."
	SearchExpired  = "The search has expired. Repeat it with /find …"
	CardNotFound   = "This card was not found (it may have been deleted)."
	EntryNotFound  = "This word was not found (it may have been deleted)."
	AlreadyDeleted = "Not found (already deleted)."
	Deleted        = "Deleted ✅"
	Updated        = "Updated ✅"
	NoMatches      = "No matches. Try another query from the menu."
	PickMatch      = "Pick the word to edit:"
	PickField      = "What do you want to change?"
	StoreFailure   = "Something went wrong, please try again later."
	UsageLetter    = "Usage: /letter A"
	NeedLetter     = "I need a Latin letter A–Z."
	NeedText       = "I am waiting for a text message."
	EntryExists    = "A word like that already exists. Nothing was changed."
	NotUnderstood  = "Send text messages, files are not supported."
)

// DeletedWord confirms a delete by word.
func DeletedWord(word string) string {
	return Deleted + ": " + format.Bold(word)
}

// WordNotFound answers a delete of a missing word.
func WordNotFound(word string) string {
	return "Word not found: " + format.Bold(word)
}

// RequiredField answers an attempt to clear word or translation.
func RequiredField(f entry.Field) string {
	return format.Escape(f.Label()) + " can not be empty. Nothing was changed."
}
