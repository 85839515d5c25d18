package wedge

import (
	"strings"

	"github.com/larkwiot/shelfscan/internal/scan"
	"github.com/samber/mo"
)

type Pair struct {
	Member string
	Item   string
}

// Router assigns scans to the member or item slot of a scan.State.
//
// With a member prefix, member cards are recognised by prefix and the member stays
// selected across several items. Without one, scans alternate member then item.
type Router struct {
	memberPrefix string
	state        scan.State
}

func NewRouter(memberPrefix string) *Router {
	return &Router{memberPrefix: memberPrefix}
}

func (r *Router) State() scan.State {
	return r.state
}

func (r *Router) keepMember() bool {
	return len(r.memberPrefix) != 0
}

func (r *Router) isMember(code string) bool {
	if r.keepMember() {
		return strings.HasPrefix(code, r.memberPrefix)
	}
	return len(r.state.MemberIdentifier) == 0
}

// Route records a scan and returns a pair once both slots are filled. The caller must
// call Done after submitting the pair.
func (r *Router) Route(code string) mo.Option[Pair] {
	if r.isMember(code) {
		r.state = r.state.WithMember(code).WithItem("")
	} else {
		r.state = r.state.WithItem(code)
	}

	if !r.state.Ready() {
		return mo.None[Pair]()
	}

	r.state = r.state.Begin()
	return mo.Some(Pair{Member: r.state.MemberIdentifier, Item: r.state.ItemIdentifier})
}

func (r *Router) Done() {
	r.state = r.state.Finish(r.keepMember())
}
