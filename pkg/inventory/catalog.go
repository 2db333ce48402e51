package inventory

// Catalog vocabularies for item categorisation.
// 商品分類の語彙（閉じた列挙型）

// Category is the top-level classification of an item
type Category string

// Subcategory refines Category
type Subcategory string

// Packaging is the package form an item is sold in
type Packaging string

// UnitType is the unit the item quantity is counted in
type UnitType string

// Choice is a vocabulary value together with its display label
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

const (
	CategoryAntacids              Category = "Antacids"
	CategoryCoughAndCold          Category = "Cough and Cold"
	CategoryDigestiveHealth       Category = "Digestive Health"
	CategoryEyeCare               Category = "Eye Care"
	CategoryMedicalSupplies       Category = "Medical Supplies & Personal Care"
	CategoryMedicalSuppliesAlt    Category = "Medical Supplies and Personal Care Products"
	CategoryOTCMedicines          Category = "Over-the-Counter (OTC) Medicines"
	CategoryPainRelievers         Category = "Pain Relievers"
	CategoryPharmacyEquipment     Category = "Pharmacy Machineries and Equipment"
	CategoryPrescriptionMedicines Category = "Prescription Medicines"
	CategorySkinCare              Category = "Skin Care"
	CategoryTopicalTreatments     Category = "Topical Treatments"
	CategoryVitaminsSupplements   Category = "Vitamins and Supplements"
)

const (
	SubcategoryAntacid                 Subcategory = "Antacid"
	SubcategoryDecongestants           Subcategory = "Decongestants"
	SubcategoryExpectorants            Subcategory = "Expectorants"
	SubcategoryAntihistamines          Subcategory = "Antihistamines"
	SubcategoryAntitussives            Subcategory = "Antitussives"
	SubcategoryLaxatives               Subcategory = "Laxatives"
	SubcategoryLubricatingDrops        Subcategory = "Lubricating Drops"
	SubcategoryFirstAidSupplies        Subcategory = "First Aid Supplies"
	SubcategoryPersonalHygiene         Subcategory = "Personal Hygiene"
	SubcategorySkinCare                Subcategory = "Skin Care"
	SubcategoryIncontinenceCare        Subcategory = "Incontinence Care"
	SubcategoryBabyCare                Subcategory = "Baby Care"
	SubcategoryEyeCare                 Subcategory = "Eye Care"
	SubcategoryMedicalSupplies         Subcategory = "Medical Supplies"
	SubcategoryBandagesAndDressings    Subcategory = "Bandages and Dressings"
	SubcategoryFirstAidKits            Subcategory = "First Aid Kits"
	SubcategoryPainRelievers           Subcategory = "Pain Relievers"
	SubcategoryCoughAndColdRemedies    Subcategory = "Cough and Cold Remedies"
	SubcategoryAnalgesics              Subcategory = "Analgesics"
	SubcategoryBloodPressureMonitors   Subcategory = "Blood Pressure Monitors"
	SubcategoryThermometers            Subcategory = "Thermometers"
	SubcategoryNebulizers              Subcategory = "Nebulizers"
	SubcategoryOxygenEquipment         Subcategory = "Oxygen Equipment"
	SubcategoryPulseOximeters          Subcategory = "Pulse Oximeters"
	SubcategorySurgicalInstruments     Subcategory = "Surgical Instruments"
	SubcategoryAntibiotics             Subcategory = "Antibiotics"
	SubcategoryAntihypertensives       Subcategory = "Antihypertensives"
	SubcategoryAntiDiabeticMedications Subcategory = "Anti-Diabetic Medications"
	SubcategorySunscreen               Subcategory = "Sunscreen"
	SubcategoryMoisturizer             Subcategory = "Moisturizer"
	SubcategoryAcneTreatment           Subcategory = "Acne Treatment"
	SubcategoryAntiFungal              Subcategory = "Anti-fungal"
	SubcategoryAntiInflammatory        Subcategory = "Anti-inflammatory"
	SubcategoryPainRelief              Subcategory = "Pain Relief"
	SubcategoryMultivitamins           Subcategory = "Multivitamins"
	SubcategoryVitaminC                Subcategory = "Vitamin C"
	SubcategoryOmega3FattyAcids        Subcategory = "Omega-3 Fatty Acids"
	SubcategoryIronSupplements         Subcategory = "Iron Supplements"
	SubcategoryVitaminD                Subcategory = "Vitamin D"
	SubcategoryVitaminBComplex         Subcategory = "Vitamin B Complex"
	SubcategoryVitaminE                Subcategory = "Vitamin E"
	SubcategoryCalcium                 Subcategory = "Calcium"
	SubcategoryIron                    Subcategory = "Iron"
	SubcategoryOmega3                  Subcategory = "Omega-3"
	SubcategoryProbiotics              Subcategory = "Probiotics"
	SubcategoryHerbalSupplements       Subcategory = "Herbal Supplements"
	SubcategoryJointHealth             Subcategory = "Joint Health"
	SubcategoryEnergyEndurance         Subcategory = "Energy & Endurance"
)

const (
	PackagingBottle          Packaging = "bottle"
	PackagingBlisterPack     Packaging = "blister_pack"
	PackagingBox             Packaging = "box"
	PackagingPack            Packaging = "pack"
	PackagingRoll            Packaging = "roll"
	PackagingTube            Packaging = "tube"
	PackagingBar             Packaging = "bar"
	PackagingOneBox          Packaging = "1_box"
	PackagingHundredPerPack  Packaging = "100_per_pack"
	PackagingOneRoll         Packaging = "1_roll"
	PackagingOneTube         Packaging = "1_tube"
	PackagingOneBottle       Packaging = "1_bottle"
	PackagingOneBar          Packaging = "1_bar"
	PackagingOneKit          Packaging = "1_kit"
	PackagingTwentyPerBottle Packaging = "20_per_bottle"
	PackagingHundredMLBottle Packaging = "100ml_bottle"
	PackagingTenPerBlister   Packaging = "10_per_blister"
	PackagingOneUnit         Packaging = "1_unit"
	PackagingSixPerBlister   Packaging = "6_per_blister"
	PackagingTenMLVial       Packaging = "10ml_vial"
	PackagingJar             Packaging = "jar"
	PackagingThirtyPerBottle Packaging = "30_per_bottle"
	PackagingSixtyPerBottle  Packaging = "60_per_bottle"
)

const (
	UnitML       UnitType = "ml"
	UnitEach     UnitType = "Each"
	UnitPack     UnitType = "Pack"
	UnitG        UnitType = "g"
	UnitPacks    UnitType = "Packs"
	UnitRolls    UnitType = "Rolls"
	UnitTubes    UnitType = "Tubes"
	UnitBottles  UnitType = "Bottles"
	UnitBars     UnitType = "Bars"
	UnitKits     UnitType = "Kits"
	UnitTablets  UnitType = "Tablets"
	UnitUnits    UnitType = "Units"
	UnitCapsules UnitType = "Capsules"
	UnitVials    UnitType = "Vials"
	UnitSoftgels UnitType = "Softgels"
	UnitTablet   UnitType = "Tablet"
)

var categoryChoices = []Choice{
	{string(CategoryAntacids), "Antacids"},
	{string(CategoryCoughAndCold), "Cough and Cold"},
	{string(CategoryDigestiveHealth), "Digestive Health"},
	{string(CategoryEyeCare), "Eye Care"},
	{string(CategoryMedicalSupplies), "Medical Supplies & Personal Care"},
	{string(CategoryMedicalSuppliesAlt), "Medical Supplies and Personal Care Products"},
	{string(CategoryOTCMedicines), "Over-the-Counter (OTC) Medicines"},
	{string(CategoryPainRelievers), "Pain Relievers"},
	{string(CategoryPharmacyEquipment), "Pharmacy Machineries and Equipment"},
	{string(CategoryPrescriptionMedicines), "Prescription Medicines"},
	{string(CategorySkinCare), "Skin Care"},
	{string(CategoryTopicalTreatments), "Topical Treatments"},
	{string(CategoryVitaminsSupplements), "Vitamins and Supplements"},
}

var subcategoryChoices = []Choice{
	{string(SubcategoryAntacid), "Antacid"},
	{string(SubcategoryDecongestants), "Decongestants"},
	{string(SubcategoryExpectorants), "Expectorants"},
	{string(SubcategoryAntihistamines), "Antihistamines"},
	{string(SubcategoryAntitussives), "Antitussives"},
	{string(SubcategoryLaxatives), "Laxatives"},
	{string(SubcategoryLubricatingDrops), "Lubricating Drops"},
	{string(SubcategoryFirstAidSupplies), "First Aid Supplies"},
	{string(SubcategoryPersonalHygiene), "Personal Hygiene"},
	{string(SubcategorySkinCare), "Skin Care"},
	{string(SubcategoryIncontinenceCare), "Incontinence Care"},
	{string(SubcategoryBabyCare), "Baby Care"},
	{string(SubcategoryEyeCare), "Eye Care"},
	{string(SubcategoryMedicalSupplies), "Medical Supplies"},
	{string(SubcategoryBandagesAndDressings), "Bandages and Dressings"},
	{string(SubcategoryFirstAidKits), "First Aid Kits"},
	{string(SubcategoryPainRelievers), "Pain Relievers"},
	{string(SubcategoryCoughAndColdRemedies), "Cough and Cold Remedies"},
	{string(SubcategoryAnalgesics), "Analgesics"},
	{string(SubcategoryBloodPressureMonitors), "Blood Pressure Monitors"},
	{string(SubcategoryThermometers), "Thermometers"},
	{string(SubcategoryNebulizers), "Nebulizers"},
	{string(SubcategoryOxygenEquipment), "Oxygen Equipment"},
	{string(SubcategoryPulseOximeters), "Pulse Oximeters"},
	{string(SubcategorySurgicalInstruments), "Surgical Instruments"},
	{string(SubcategoryAntibiotics), "Antibiotics"},
	{string(SubcategoryAntihypertensives), "Antihypertensives"},
	{string(SubcategoryAntiDiabeticMedications), "Anti-Diabetic Medications"},
	{string(SubcategorySunscreen), "Sunscreen"},
	{string(SubcategoryMoisturizer), "Moisturizer"},
	{string(SubcategoryAcneTreatment), "Acne Treatment"},
	{string(SubcategoryAntiFungal), "Anti-fungal"},
	{string(SubcategoryAntiInflammatory), "Anti-inflammatory"},
	{string(SubcategoryPainRelief), "Pain Relief"},
	{string(SubcategoryMultivitamins), "Multivitamins"},
	{string(SubcategoryVitaminC), "Vitamin C"},
	{string(SubcategoryOmega3FattyAcids), "Omega-3 Fatty Acids"},
	{string(SubcategoryIronSupplements), "Iron Supplements"},
	{string(SubcategoryVitaminD), "Vitamin D"},
	{string(SubcategoryVitaminBComplex), "Vitamin B Complex"},
	{string(SubcategoryVitaminE), "Vitamin E"},
	{string(SubcategoryCalcium), "Calcium"},
	{string(SubcategoryIron), "Iron"},
	{string(SubcategoryOmega3), "Omega-3"},
	{string(SubcategoryProbiotics), "Probiotics"},
	{string(SubcategoryHerbalSupplements), "Herbal Supplements"},
	{string(SubcategoryJointHealth), "Joint Health"},
	{string(SubcategoryEnergyEndurance), "Energy & Endurance"},
}

var packagingChoices = []Choice{
	{string(PackagingBottle), "Bottle"},
	{string(PackagingBlisterPack), "Blister Pack"},
	{string(PackagingBox), "Box"},
	{string(PackagingPack), "Pack"},
	{string(PackagingRoll), "Roll"},
	{string(PackagingTube), "Tube"},
	{string(PackagingBar), "Bar"},
	{string(PackagingOneBox), "1 box"},
	{string(PackagingHundredPerPack), "100's per pack"},
	{string(PackagingOneRoll), "1 roll"},
	{string(PackagingOneTube), "1 tube"},
	{string(PackagingOneBottle), "1 bottle"},
	{string(PackagingOneBar), "1 bar"},
	{string(PackagingOneKit), "1 kit"},
	{string(PackagingTwentyPerBottle), "20's per bottle"},
	{string(PackagingHundredMLBottle), "100mL bottle"},
	{string(PackagingTenPerBlister), "10's per blister"},
	{string(PackagingOneUnit), "1 unit"},
	{string(PackagingSixPerBlister), "6's per blister"},
	{string(PackagingTenMLVial), "10mL vial"},
	{string(PackagingJar), "Jar"},
	{string(PackagingThirtyPerBottle), "30's per bottle"},
	{string(PackagingSixtyPerBottle), "60's per bottle"},
}

var unitChoices = []Choice{
	{string(UnitML), "Milliliters"},
	{string(UnitEach), "Each"},
	{string(UnitPack), "Pack"},
	{string(UnitG), "Grams"},
	{string(UnitPacks), "Packs"},
	{string(UnitRolls), "Rolls"},
	{string(UnitTubes), "Tubes"},
	{string(UnitBottles), "Bottles"},
	{string(UnitBars), "Bars"},
	{string(UnitKits), "Kits"},
	{string(UnitTablets), "Tablets"},
	{string(UnitUnits), "Units"},
	{string(UnitCapsules), "Capsules"},
	{string(UnitVials), "Vials"},
	{string(UnitSoftgels), "Softgels"},
	{string(UnitTablet), "Tablet"},
}

var (
	categorySet    = choiceSet(categoryChoices)
	subcategorySet = choiceSet(subcategoryChoices)
	packagingSet   = choiceSet(packagingChoices)
	unitSet        = choiceSet(unitChoices)
)

func choiceSet(choices []Choice) map[string]struct{} {
	set := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		set[c.Value] = struct{}{}
	}
	return set
}

func (c Category) Valid() bool    { _, ok := categorySet[string(c)]; return ok }
func (s Subcategory) Valid() bool { _, ok := subcategorySet[string(s)]; return ok }
func (p Packaging) Valid() bool   { _, ok := packagingSet[string(p)]; return ok }
func (u UnitType) Valid() bool    { _, ok := unitSet[string(u)]; return ok }

// Categories returns the category vocabulary in catalog order
func Categories() []Choice { return append([]Choice(nil), categoryChoices...) }

// Subcategories returns the subcategory vocabulary in catalog order
func Subcategories() []Choice { return append([]Choice(nil), subcategoryChoices...) }

// Packagings returns the packaging vocabulary in catalog order
func Packagings() []Choice { return append([]Choice(nil), packagingChoices...) }

// UnitTypes returns the unit vocabulary in catalog order
func UnitTypes() []Choice { return append([]Choice(nil), unitChoices...) }

// ValidateItem checks the four categorical fields of an item against the
// catalog. It performs no I/O and must run before any item write.
// 商品の分類フィールドをカタログと照合
func ValidateItem(category Category, subcategory Subcategory, packaging Packaging, unit UnitType) error {
	if !unit.Valid() {
		return NewInvalidEnumValueError("unit", string(unit))
	}
	if !category.Valid() {
		return NewInvalidEnumValueError("category", string(category))
	}
	if !subcategory.Valid() {
		return NewInvalidEnumValueError("subcategory", string(subcategory))
	}
	if !packaging.Valid() {
		return NewInvalidEnumValueError("packaging", string(packaging))
	}
	return nil
}
