package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/futig/rafiq-frontend/internal/entity"
	pkghttp "github.com/futig/rafiq-frontend/pkg/http"
)

const (
	// Ingestion
	MsgEmptyText        = "Collez quelque chose d'abord."
	MsgIngestInProgress = "Indexation en cours..."
	MsgIngestDone       = "Indexé: %s documents (source: %s)"
	MsgIngestFailed     = "Erreur d'indexation: "

	// Chat
	MsgThinking = "Rafiq-AI réfléchit..."
	MsgNoAnswer = "Aucune réponse"
	MsgChatFail = "Erreur: "

	// absent ingestion response fields
	missingField = "?"
)

const (
	TgWelcome = `👋 Salam ! Je suis Rafiq-AI.

Posez-moi une question et je réponds à partir des documents indexés.

/ingest <texte> pour indexer un texte
/sources pour voir les sources de la dernière réponse
/export pour télécharger la conversation
/start pour recommencer`

	TgHelp = `ℹ️ Commandes disponibles :

/ingest <texte> indexe le texte donné (ou le prochain message)
/sources affiche les sources de la dernière réponse
/export envoie la conversation en markdown
/start efface la conversation`

	TgAskIngestText  = "📎 Envoyez le texte à indexer."
	TgNoSources      = "Aucune source pour le moment."
	TgConversationRe = "🧹 Nouvelle conversation."
	TgNothingExport  = "La conversation est vide."
	TgUnsupported    = "Je ne comprends que le texte et les fichiers .txt / .md."

	TgButtonSources = "📚 Sources"
	TgButtonReset   = "🧹 Nouvelle conversation"
	TgButtonExport  = "⬇️ Exporter"
)

const (
	ErrGeneric            = "❌ Une erreur est survenue. Réessayez ou tapez /start"
	ErrNetworkIssue       = "❌ Problème de connexion. Réessayez plus tard."
	ErrServiceUnavailable = "❌ Le service est indisponible pour le moment."
	ErrTimeout            = "❌ L'opération a pris trop de temps. Réessayez."
	ErrInvalidFile        = "❌ Fichier non pris en charge. Envoyez un fichier .txt ou .md."
	ErrFileTooLarge       = "❌ Fichier trop volumineux."
	ErrInvalidURL         = "❌ URL invalide, utilisez une adresse http ou https."
	ErrBadResponse        = "❌ Réponse inattendue du service."
	ErrRejected           = "❌ Le service a refusé la requête: %s"
	ErrRateLimited        = "⏳ Trop de messages. Patientez un instant."
)

// ClassifyError maps an error to a short message for chat users.
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	switch {
	case errors.Is(err, entity.ErrEmptyText):
		return MsgEmptyText
	case errors.Is(err, entity.ErrInvalidFile), errors.Is(err, entity.ErrInvalidExtension):
		return ErrInvalidFile
	case errors.Is(err, entity.ErrFileTooLarge):
		return ErrFileTooLarge
	case errors.Is(err, entity.ErrInvalidURL):
		return ErrInvalidURL
	case errors.Is(err, entity.ErrNothingToExport):
		return TgNothingExport
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 500 {
			return ErrServiceUnavailable
		}
		return fmt.Sprintf(ErrRejected, httpErr.Message)
	}

	var decErr *pkghttp.DecodeError
	if errors.As(err, &decErr) {
		return ErrBadResponse
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return ErrServiceUnavailable
		}
		if opErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return ErrServiceUnavailable
	case strings.Contains(errMsg, "timeout"):
		return ErrTimeout
	case strings.Contains(errMsg, "network"):
		return ErrNetworkIssue
	}

	return ErrGeneric
}
