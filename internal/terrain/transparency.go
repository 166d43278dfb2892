package terrain

import "strings"

type blockTraits struct {
	transparent bool
	passable    bool
}

var (
	seeThrough  = blockTraits{transparent: true}
	walkThrough = blockTraits{transparent: true, passable: true}
)

var blockTable map[string]blockTraits

// suffixTraits covers whole families of variants (every wood, every dye colour).
// Longer suffixes are listed first so "_glass_pane" wins over "_pane".
var suffixTraits = []struct {
	suffix string
	traits blockTraits
}{
	{"_stained_glass_pane", seeThrough},
	{"_stained_glass", seeThrough},
	{"_wall_hanging_sign", walkThrough},
	{"_hanging_sign", walkThrough},
	{"_wall_sign", walkThrough},
	{"_sign", walkThrough},
	{"_wall_banner", walkThrough},
	{"_banner", walkThrough},
	{"_carpet", walkThrough},
	{"_candle", seeThrough},
	{"_leaves", seeThrough},
	{"_sapling", walkThrough},
	{"_fence_gate", seeThrough},
	{"_fence", seeThrough},
	{"_trapdoor", seeThrough},
	{"_door", seeThrough},
	{"_button", walkThrough},
	{"_pressure_plate", walkThrough},
	{"_tulip", walkThrough},
	{"_rail", walkThrough},
}

func init() {
	blockTable = make(map[string]blockTraits, 128)

	addBlocks(walkThrough,
		"air",
		"cave_air",
		"void_air",
		"water",
		"lava",
		"bubble_column",
	)

	addBlocks(seeThrough,
		"glass",
		"glass_pane",
		"tinted_glass",
		"iron_bars",
		"chain",
		"cobweb",
		"lantern",
		"soul_lantern",
		"flower_pot",
		"campfire",
		"soul_campfire",
		"end_rod",
		"lightning_rod",
		"candle",
		"snow",
		"barrier",
	)

	addBlocks(walkThrough,
		"grass",
		"short_grass",
		"tall_grass",
		"fern",
		"large_fern",
		"dead_bush",
		"vine",
		"kelp",
		"kelp_plant",
		"seagrass",
		"tall_seagrass",
		"hanging_roots",
		"spore_blossom",
		"cave_vines",
		"cave_vines_plant",
		"weeping_vines",
		"weeping_vines_plant",
		"twisting_vines",
		"twisting_vines_plant",
		"moss_carpet",
		"sugar_cane",
		"dandelion",
		"poppy",
		"blue_orchid",
		"allium",
		"azure_bluet",
		"oxeye_daisy",
		"cornflower",
		"lily_of_the_valley",
		"wither_rose",
		"sunflower",
		"lilac",
		"rose_bush",
		"peony",
		"torchflower",
		"torch",
		"wall_torch",
		"soul_torch",
		"soul_wall_torch",
		"redstone_torch",
		"redstone_wall_torch",
		"redstone_wire",
		"ladder",
		"lever",
		"rail",
		"tripwire",
	)
}

func traitsOf(name string) blockTraits {
	normalized := NormalizeBlockName(name)
	if normalized == "" {
		return blockTraits{}
	}
	if traits, ok := blockTable[normalized]; ok {
		return traits
	}
	for _, rule := range suffixTraits {
		if strings.HasSuffix(normalized, rule.suffix) {
			return rule.traits
		}
	}
	return blockTraits{}
}

func addBlocks(traits blockTraits, names ...string) {
	for _, name := range names {
		normalized := NormalizeBlockName(name)
		if normalized == "" {
			continue
		}
		blockTable[normalized] = traits
	}
}
