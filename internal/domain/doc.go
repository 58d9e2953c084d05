// Package domain contains the card-sorting entities: studies with their card
// decks and participant profiles, the sessions participants record and the
// researcher accounts that own them. The analysis engine lives in the
// analysis sub-package.
package domain
