package collect

import (
	"slicestub/internal/model"
	"slicestub/internal/stub"
)

// collectImportAnchors plans owner types named by imports that no longer
// resolve: single-type imports of a vanished type, and the owning types of
// static imports. Star imports name no type and anchor nothing.
func (c *Collector) collectImportAnchors() error {
	for _, u := range c.prog.SliceUnits() {
		for _, im := range u.Imports {
			var fqn string

			switch im.Kind {
			case model.ImportSingle:
				fqn = im.Path
			case model.ImportStatic, model.ImportStaticOnDemand:
				fqn = im.OwnerFQN()
			default:
				continue
			}

			if fqn == "" || model.IsReservedFQN(fqn) {
				continue
			}

			ref := c.canonicalizeFQN(model.RefFromFQN(fqn))

			if c.prog.DeclaredType(ref.FQN()) != nil || c.ctx.Knows(ref.FQN()) {
				continue
			}

			c.planOwner(ref, stub.KindClass)
		}
	}

	return nil
}
