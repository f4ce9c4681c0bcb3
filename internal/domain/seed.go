package domain

import "github.com/shopspring/decimal"

func seedItem(id string, cat MenuCategory, price string, nl, pl, el string, popular bool) MenuItem {
	return MenuItem{
		ID:           id,
		Category:     cat,
		Price:        decimal.RequireFromString(price),
		Names:        map[Language]string{LangDutch: nl, LangPolish: pl, LangGreek: el},
		Descriptions: map[Language]string{},
		IsAvailable:  true,
		IsPopular:    popular,
	}
}

// SeedMenu is served until the catalog has been loaded from the record store
// or a local snapshot.
func SeedMenu() []MenuItem {
	items := []MenuItem{
		seedItem("moussaka", CategoryMains, "14.50", "Moussaka", "Musaka", "Μουσακάς", true),
		seedItem("souvlaki", CategoryMains, "15.50", "Souvlaki", "Suvlaki", "Σουβλάκι", true),
		seedItem("gyros", CategoryMains, "13.50", "Gyros", "Gyros", "Γύρος", true),
		seedItem("stifado", CategoryMains, "17.00", "Stifado", "Stifado", "Στιφάδο", false),
		seedItem("tzatziki", CategoryColdStarters, "5.50", "Tzatziki", "Tzatziki", "Τζατζίκι", false),
		seedItem("taramosalata", CategoryColdStarters, "6.00", "Taramosalata", "Taramosalata", "Ταραμοσαλάτα", false),
		seedItem("saganaki", CategoryWarmStarters, "7.50", "Saganaki", "Saganaki", "Σαγανάκι", false),
		seedItem("spanakopita", CategoryWarmStarters, "7.00", "Spanakopita", "Spanakopita", "Σπανακόπιτα", false),
		seedItem("horiatiki", CategorySalads, "9.50", "Griekse salade", "Sałatka grecka", "Χωριάτικη", true),
		seedItem("baklava", CategoryDesserts, "6.50", "Baklava", "Baklawa", "Μπακλαβάς", false),
		seedItem("yoghurt-honey", CategoryDesserts, "5.50", "Yoghurt met honing", "Jogurt z miodem", "Γιαούρτι με μέλι", false),
	}
	items[0].Allergens = []string{"milk", "gluten"}
	items[4].IsVegetarian = true
	items[4].IsGlutenFree = true
	items[7].IsVegetarian = true
	items[8].IsVegetarian = true
	return items
}

func SeedDrivers() []Driver {
	return []Driver{
		{ID: "DRV-001", Name: "Nikos Papadopoulos", Phone: "+31612345678", Status: DriverAvailable},
		{ID: "DRV-002", Name: "Dimitris Kostas", Phone: "+31687654321", Status: DriverAvailable},
		{ID: "DRV-003", Name: "Yannis Stavros", Phone: "+31698765432", Status: DriverOffline},
	}
}
