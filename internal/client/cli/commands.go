package cli

func (a *App) commands() []command {
	return []command{
		{names: []string{"login"}, usage: "login", run: a.login},
		{names: []string{"register"}, usage: "register", run: a.register},
		{names: []string{"logout"}, usage: "logout", run: a.logout},
		{names: []string{"whoami"}, usage: "whoami", run: a.whoami},
		{names: []string{"profile"}, usage: "profile", protected: true, run: a.profile},
		{names: []string{"editprofile"}, usage: "editprofile", protected: true, run: a.editProfile},

		{names: []string{"assets", "ls"}, usage: "assets [page] [search=..] [category=..] [sort=..] [min=..] [max=..]", run: a.listAssets},
		{names: []string{"next"}, usage: "next", run: a.nextPage},
		{names: []string{"prev"}, usage: "prev", run: a.prevPage},
		{names: []string{"show"}, usage: "show <id>", run: a.showAsset},
		{names: []string{"categories"}, usage: "categories", run: a.listCategories},
		{names: []string{"purchase", "buy"}, usage: "purchase <id>", protected: true, run: a.purchase},
		{names: []string{"download"}, usage: "download <id> [file]", protected: true, run: a.download},
		{names: []string{"upload"}, usage: "upload", protected: true, run: a.upload},

		{names: []string{"cart"}, usage: "cart", run: a.showCart},
		{names: []string{"add"}, usage: "add <id> [quantity]", run: a.addToCart},
		{names: []string{"remove", "rm"}, usage: "remove <id>", run: a.removeFromCart},
		{names: []string{"clear"}, usage: "clear", run: a.clearCart},
	}
}
