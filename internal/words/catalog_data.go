package words

// builtin is the default catalog: 20 categories of short everyday words.
var builtin = []WordData{
	{Word: "TIGER", Category: "Animals", Hint: "Big striped cat"},
	{Word: "LION", Category: "Animals", Hint: "King of the jungle"},
	{Word: "ZEBRA", Category: "Animals", Hint: "Black and white stripes"},
	{Word: "PANDA", Category: "Animals", Hint: "Bamboo eater"},
	{Word: "KOALA", Category: "Animals", Hint: "Australian tree climber"},
	{Word: "EAGLE", Category: "Animals", Hint: "Flying predator"},
	{Word: "SHARK", Category: "Animals", Hint: "Ocean predator"},
	{Word: "WHALE", Category: "Animals", Hint: "Largest sea mammal"},
	{Word: "GIRAFFE", Category: "Animals", Hint: "Long neck"},
	{Word: "MONKEY", Category: "Animals", Hint: "Banana eater"},
	{Word: "PIZZA", Category: "Food", Hint: "Cheesy Italian dish"},
	{Word: "BURGER", Category: "Food", Hint: "Patty in a bun"},
	{Word: "SUSHI", Category: "Food", Hint: "Raw fish and rice"},
	{Word: "PASTA", Category: "Food", Hint: "Noodles with sauce"},
	{Word: "TACO", Category: "Food", Hint: "Mexican shell snack"},
	{Word: "BREAD", Category: "Food", Hint: "Loaf for sandwiches"},
	{Word: "APPLE", Category: "Food", Hint: "Red or green fruit"},
	{Word: "GRAIN", Category: "Food", Hint: "Wheat or rice"},
	{Word: "STEAK", Category: "Food", Hint: "Grilled meat"},
	{Word: "SALAD", Category: "Food", Hint: "Leafy veggie mix"},
	{Word: "ROBOT", Category: "Tech", Hint: "Automated machine"},
	{Word: "LAPTOP", Category: "Tech", Hint: "Portable computer"},
	{Word: "PHONE", Category: "Tech", Hint: "Mobile device"},
	{Word: "WIFI", Category: "Tech", Hint: "Wireless internet"},
	{Word: "CODE", Category: "Tech", Hint: "Program instructions"},
	{Word: "DATA", Category: "Tech", Hint: "Digital information"},
	{Word: "MOUSE", Category: "Tech", Hint: "Clicking device"},
	{Word: "SCREEN", Category: "Tech", Hint: "Display panel"},
	{Word: "MOON", Category: "Space", Hint: "Night sky orb"},
	{Word: "MARS", Category: "Space", Hint: "The Red Planet"},
	{Word: "STAR", Category: "Space", Hint: "Burn bright sun"},
	{Word: "ORBIT", Category: "Space", Hint: "Path around a planet"},
	{Word: "COMET", Category: "Space", Hint: "Icy space rock"},
	{Word: "EARTH", Category: "Space", Hint: "Our home planet"},
	{Word: "SOCCER", Category: "Sports", Hint: "Kicking a ball"},
	{Word: "TENNIS", Category: "Sports", Hint: "Racket and court"},
	{Word: "RUGBY", Category: "Sports", Hint: "Oval ball contact"},
	{Word: "GOLF", Category: "Sports", Hint: "Clubs and holes"},
	{Word: "SWIM", Category: "Sports", Hint: "Moving in water"},
	{Word: "BLUE", Category: "Colors", Hint: "Color of the sky"},
	{Word: "GREEN", Category: "Colors", Hint: "Color of grass"},
	{Word: "PURPLE", Category: "Colors", Hint: "Royal color"},
	{Word: "ORANGE", Category: "Colors", Hint: "Fruit color"},
	{Word: "YELLOW", Category: "Colors", Hint: "Sun color"},
	{Word: "TREE", Category: "Nature", Hint: "Tall plant with wood"},
	{Word: "RIVER", Category: "Nature", Hint: "Flowing water"},
	{Word: "RAIN", Category: "Nature", Hint: "Water from clouds"},
	{Word: "SNOW", Category: "Nature", Hint: "Frozen rain"},
	{Word: "WIND", Category: "Nature", Hint: "Moving air"},
	{Word: "LEAF", Category: "Nature", Hint: "Green plant part"},
	{Word: "PLANE", Category: "Travel", Hint: "Flying vehicle"},
	{Word: "TRAIN", Category: "Travel", Hint: "Rail transport"},
	{Word: "HOTEL", Category: "Travel", Hint: "Place to stay"},
	{Word: "MAP", Category: "Travel", Hint: "Guide to locations"},
	{Word: "BOAT", Category: "Travel", Hint: "Water vehicle"},
	{Word: "PIANO", Category: "Music", Hint: "Keys instrument"},
	{Word: "GUITAR", Category: "Music", Hint: "Strumming strings"},
	{Word: "SONG", Category: "Music", Hint: "Music with words"},
	{Word: "JAZZ", Category: "Music", Hint: "Smooth genre"},
	{Word: "DRUM", Category: "Music", Hint: "Beat instrument"},
	{Word: "CHAIR", Category: "House", Hint: "Seat for one"},
	{Word: "TABLE", Category: "House", Hint: "Flat surface"},
	{Word: "BED", Category: "House", Hint: "Sleep here"},
	{Word: "DOOR", Category: "House", Hint: "Entryway"},
	{Word: "LAMP", Category: "House", Hint: "Light source"},
	{Word: "HAND", Category: "Body", Hint: "Five fingers"},
	{Word: "FEET", Category: "Body", Hint: "Walk on these"},
	{Word: "EYES", Category: "Body", Hint: "See with these"},
	{Word: "HEART", Category: "Body", Hint: "Beating organ"},
	{Word: "NOSE", Category: "Body", Hint: "Smell with this"},
	{Word: "SHIRT", Category: "Clothes", Hint: "Upper body wear"},
	{Word: "SHOES", Category: "Clothes", Hint: "Footwear"},
	{Word: "HAT", Category: "Clothes", Hint: "Head covering"},
	{Word: "JEANS", Category: "Clothes", Hint: "Denim pants"},
	{Word: "COAT", Category: "Clothes", Hint: "Warm outer layer"},
	{Word: "BOOK", Category: "School", Hint: "Read this"},
	{Word: "PEN", Category: "School", Hint: "Write with this"},
	{Word: "DESK", Category: "School", Hint: "Sit and work"},
	{Word: "MATH", Category: "School", Hint: "Numbers study"},
	{Word: "CLASS", Category: "School", Hint: "Group of students"},
	{Word: "SUNNY", Category: "Weather", Hint: "Bright day"},
	{Word: "STORM", Category: "Weather", Hint: "Thunder and lightning"},
	{Word: "COLD", Category: "Weather", Hint: "Low temperature"},
	{Word: "HEAT", Category: "Weather", Hint: "High temperature"},
	{Word: "FOG", Category: "Weather", Hint: "Low cloud"},
	{Word: "CHEF", Category: "Jobs", Hint: "Cooks food"},
	{Word: "DOCTOR", Category: "Jobs", Hint: "Heals sick people"},
	{Word: "PILOT", Category: "Jobs", Hint: "Flies planes"},
	{Word: "ARTIST", Category: "Jobs", Hint: "Creates art"},
	{Word: "NURSE", Category: "Jobs", Hint: "Medical helper"},
	{Word: "HAPPY", Category: "Emotions", Hint: "Smiling feeling"},
	{Word: "SAD", Category: "Emotions", Hint: "Crying feeling"},
	{Word: "ANGRY", Category: "Emotions", Hint: "Mad feeling"},
	{Word: "LOVE", Category: "Emotions", Hint: "Deep affection"},
	{Word: "FEAR", Category: "Emotions", Hint: "Scared feeling"},
	{Word: "CAR", Category: "Vehicles", Hint: "Drive on road"},
	{Word: "BIKE", Category: "Vehicles", Hint: "Two wheels"},
	{Word: "TRUCK", Category: "Vehicles", Hint: "Hauls cargo"},
	{Word: "SHIP", Category: "Vehicles", Hint: "Large boat"},
	{Word: "BUS", Category: "Vehicles", Hint: "Public transport"},
	{Word: "WATER", Category: "Drinks", Hint: "Clear liquid"},
	{Word: "MILK", Category: "Drinks", Hint: "Dairy drink"},
	{Word: "JUICE", Category: "Drinks", Hint: "Fruit drink"},
	{Word: "TEA", Category: "Drinks", Hint: "Leaf drink"},
	{Word: "SODA", Category: "Drinks", Hint: "Fizzy drink"},
	{Word: "HOUR", Category: "Time", Hint: "60 minutes"},
	{Word: "WEEK", Category: "Time", Hint: "7 days"},
	{Word: "YEAR", Category: "Time", Hint: "365 days"},
	{Word: "NOON", Category: "Time", Hint: "Midday"},
	{Word: "DAY", Category: "Time", Hint: "Sun is up"},
	{Word: "SAND", Category: "Beach", Hint: "Tiny rocks"},
	{Word: "WAVE", Category: "Beach", Hint: "Moving water"},
	{Word: "SHELL", Category: "Beach", Hint: "Sea creature home"},
	{Word: "SURF", Category: "Beach", Hint: "Ride the waves"},
}
