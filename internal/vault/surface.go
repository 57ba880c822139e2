package vault

import "context"

// Surface exposes one note as the editable buffer a reply is written into.
type Surface struct {
	vault *Vault
	doc   Document
}

func (v *Vault) Surface(doc Document) *Surface {
	return &Surface{vault: v, doc: doc}
}

func (s *Surface) Document() Document {
	return s.doc
}

func (s *Surface) CurrentText(ctx context.Context) (string, error) {
	return s.vault.Read(ctx, s.doc)
}

func (s *Surface) AppendAtEnd(ctx context.Context, text string) error {
	return s.vault.Append(ctx, s.doc, text)
}
