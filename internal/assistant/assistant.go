// Package assistant answers patient questions through a generative model
// primed with the clinic's details.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Replies shown to the patient when no model answer is available.
const (
	ReplyNotConfigured = "Le service d'IA n'est pas configuré (Clé API manquante)."
	ReplyEmpty         = "Désolé, je n'ai pas pu générer de réponse."
	ReplyFailed        = "Une erreur est survenue lors du traitement de votre demande. Veuillez réessayer plus tard."
)

// DefaultTemperature is the sampling temperature when none is configured.
const DefaultTemperature = 0.7

// Request is one generation call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Catalog is the clinic information the system instruction is built from.
type Catalog interface {
	Clinic() models.ClinicInfo
	Doctors() []models.Doctor
	Services() []models.Service
}

// Assistant wraps a Generator with the clinic's system instruction and the
// fixed fallback replies. A nil generator means the service is not configured.
type Assistant struct {
	gen         Generator
	system      string
	temperature float32
	timeout     time.Duration
}

// New creates an Assistant. temperature is clamped to [0, 1]; a zero
// timeout disables the deadline.
func New(gen Generator, catalog Catalog, temperature float64, timeout time.Duration) *Assistant {
	return &Assistant{
		gen:         gen,
		system:      SystemInstruction(catalog),
		temperature: float32(min(max(temperature, 0), 1)),
		timeout:     timeout,
	}
}

// Configured reports whether a model is available.
func (a *Assistant) Configured() bool { return a.gen != nil }

// Reply always returns text for the patient. Failures are logged and
// replaced by one of the fallback replies.
func (a *Assistant) Reply(ctx context.Context, prompt string) string {
	if a.gen == nil {
		return ReplyNotConfigured
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.gen.Generate(ctx, Request{System: a.system, Prompt: prompt, Temperature: a.temperature})
	if err != nil {
		log.Error().Err(err).Msg("Assistant generation failed")
		return ReplyFailed
	}
	if strings.TrimSpace(text) == "" {
		return ReplyEmpty
	}
	return text
}

// SystemInstruction primes the model with the clinic's contact details,
// services and doctors, and with the rules it must follow.
func SystemInstruction(c Catalog) string {
	clinic := c.Clinic()

	services := make([]string, 0)
	for _, s := range c.Services() {
		services = append(services, s.Title)
	}
	doctors := make([]string, 0)
	for _, d := range c.Doctors() {
		doctors = append(doctors, fmt.Sprintf("%s (%s)", d.Name, d.Specialty))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tu es l'assistant virtuel intelligent de la %s située à %s.\n", clinic.Name, clinic.Address)
	b.WriteString("Ton rôle est d'aider les patients avec des informations générales, de les guider vers les bons services, et de répondre à des questions de santé de base.\n\n")
	b.WriteString("Informations Clés:\n")
	fmt.Fprintf(&b, "- Téléphone: %s\n", clinic.Phone)
	fmt.Fprintf(&b, "- Services disponibles: %s\n", strings.Join(services, ", "))
	fmt.Fprintf(&b, "- Docteurs: %s\n\n", strings.Join(doctors, ", "))
	b.WriteString("Règles:\n")
	b.WriteString("1. Sois poli, empathique et professionnel. Utilise un ton rassurant.\n")
	fmt.Fprintf(&b, "2. Si un patient décrit des symptômes graves (douleur thoracique, difficulté respiratoire, saignement abondant), conseille-leur IMMÉDIATEMENT d'appeler les urgences (%s) ou de venir à la clinique.\n", clinic.Phone)
	b.WriteString("3. NE FAIS PAS de diagnostic médical définitif. Dis toujours \"Je ne suis qu'une IA, veuillez consulter un médecin pour un diagnostic précis.\"\n")
	b.WriteString("4. Réponds en Français.\n")
	b.WriteString("5. Sois concis.\n")
	return b.String()
}
